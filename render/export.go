package render

import (
	"fmt"
	"image"

	"github.com/stewi1014/procview/imageio"
	"github.com/stewi1014/procview/status"
)

// MaxExportBytes bounds the readback buffer of an export.
const MaxExportBytes = 1 << 30

// Encoder writes img to path. imageio.WritePNG is one.
type Encoder func(path string, img image.Image) error

// Export reads back the width×height colour buffer and writes it to path
// with encode, top row first.
func Export(gl GL, width, height int, path string, encode Encoder) error {
	const op = "export"
	if width <= 0 || height <= 0 {
		return status.Path(op, status.InvalidParameter, path, fmt.Errorf("viewport %dx%d is empty", width, height))
	}
	size := int64(width) * int64(height) * 3
	if size > MaxExportBytes {
		return status.Path(op, status.AllocationError, path, fmt.Errorf("%dx%d needs %d bytes", width, height, size))
	}

	pix := make([]byte, size)
	if err := gl.ReadPixels(0, 0, int32(width), int32(height), pix); err != nil {
		return status.Path(op, status.ExternalError, path, fmt.Errorf("reading pixels: %w", err))
	}
	FlipRows(pix, width*3)

	return encode(path, imageio.NewRGB(pix, width, height))
}

// FlipRows reverses the order of the stride byte rows in pix.
func FlipRows(pix []byte, stride int) {
	if stride <= 0 {
		return
	}
	tmp := make([]byte, stride)
	rows := len(pix) / stride
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
