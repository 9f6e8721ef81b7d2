package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/stewi1014/procview/status"
)

// RGB is a packed 8-bit RGB image, top row first.
type RGB struct {
	Pix  []byte
	Rect image.Rectangle
}

func NewRGB(pix []byte, width, height int) *RGB {
	return &RGB{Pix: pix, Rect: image.Rect(0, 0, width, height)}
}

func (i *RGB) ColorModel() color.Model { return color.RGBAModel }

func (i *RGB) Bounds() image.Rectangle { return i.Rect }

func (i *RGB) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(i.Rect)) {
		return color.RGBA{}
	}
	o := ((y-i.Rect.Min.Y)*i.Rect.Dx() + (x - i.Rect.Min.X)) * 3
	return color.RGBA{R: i.Pix[o], G: i.Pix[o+1], B: i.Pix[o+2], A: 0xff}
}

func (i *RGB) Opaque() bool { return true }

// WritePNG encodes img to path. The image is written to a temporary file in
// the same directory and renamed into place, so a failed export never leaves a
// partial file at path.
func WritePNG(path string, img image.Image) (err error) {
	const op = "write png"
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return status.Path(op, status.AccessDenied, path, err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return status.Path(op, status.AccessDenied, path, err)
	}
	keepFile := false
	defer func() {
		if !keepFile {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	if err := png.Encode(file, img); err != nil {
		return status.Path(op, status.ExternalError, path, fmt.Errorf("encoding: %w", err))
	}
	if err := file.Close(); err != nil {
		return status.Path(op, status.ExternalError, path, err)
	}
	if err := os.Rename(file.Name(), path); err != nil {
		return status.Path(op, status.ExternalError, path, err)
	}

	keepFile = true
	return nil
}
