package imageio

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Orient returns src transformed for display according to the EXIF
// orientation value o (1 to 8). Unknown values return src unchanged.
func Orient(src *image.NRGBA, o int) *image.NRGBA {
	if o < 2 || o > 8 {
		return src
	}

	w, h := float64(src.Rect.Dx()), float64(src.Rect.Dy())
	dw, dh := src.Rect.Dx(), src.Rect.Dy()
	if o >= 5 {
		dw, dh = dh, dw
	}

	// m maps source pixel edges to destination pixel edges, so every
	// destination pixel center samples exactly one source pixel.
	var m f64.Aff3
	switch o {
	case 2: // mirrored horizontally
		m = f64.Aff3{-1, 0, w, 0, 1, 0}
	case 3: // rotated 180
		m = f64.Aff3{-1, 0, w, 0, -1, h}
	case 4: // mirrored vertically
		m = f64.Aff3{1, 0, 0, 0, -1, h}
	case 5: // transposed
		m = f64.Aff3{0, 1, 0, 1, 0, 0}
	case 6: // needs 90 clockwise
		m = f64.Aff3{0, -1, h, 1, 0, 0}
	case 7: // transversed
		m = f64.Aff3{0, -1, h, -1, 0, w}
	case 8: // needs 90 counter-clockwise
		m = f64.Aff3{0, 1, 0, -1, 0, w}
	}
	origin := src.Rect.Min
	m[2] -= m[0]*float64(origin.X) + m[1]*float64(origin.Y)
	m[5] -= m[3]*float64(origin.X) + m[4]*float64(origin.Y)

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	draw.NearestNeighbor.Transform(dst, m, src, src.Rect, draw.Src, nil)
	return dst
}
