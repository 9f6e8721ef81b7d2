package render

import (
	"fmt"

	"github.com/chewxy/math32"
)

// BayerMatrix returns the n×n ordered dithering index matrix, row major, with
// each of 0..n*n-1 appearing once. n must be a power of two.
func BayerMatrix(n int) ([]int, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("bayer matrix size %d is not a power of two", n)
	}

	m := []int{0}
	for size := 1; size < n; size *= 2 {
		next := make([]int, 4*size*size)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				v := 4 * m[y*size+x]
				next[y*2*size+x] = v
				next[y*2*size+x+size] = v + 2
				next[(y+size)*2*size+x] = v + 3
				next[(y+size)*2*size+x+size] = v + 1
			}
		}
		m = next
	}
	return m, nil
}

// DitherTexture is a single channel texture of Bayer thresholds, each cell
// centred in its interval of [0, 1).
func DitherTexture(n int) (TextureData, error) {
	m, err := BayerMatrix(n)
	if err != nil {
		return TextureData{}, err
	}

	cells := float32(n * n)
	pix := make([]byte, len(m))
	for i, v := range m {
		t := (float32(v) + 0.5) / cells
		pix[i] = uint8(math32.Min(math32.Floor(t*256), 255))
	}
	return TextureData{
		Pix:      pix,
		Width:    n,
		Height:   n,
		Channels: 1,
		Filter:   Nearest,
		Repeat:   true,
	}, nil
}
