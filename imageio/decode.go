// Package imageio loads bitmaps for the post-processing pass and writes
// exported frames.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/stewi1014/procview/status"
)

// Asset is a decoded image ready for texture upload. Pix holds Height rows
// of Width pixels, top row first, Channels bytes per pixel (3 for RGB, 4 for
// non-premultiplied RGBA).
type Asset struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
	Format   string
}

// Release drops the pixel buffer once it has been uploaded.
func (a *Asset) Release() {
	a.Pix = nil
}

type DecodeOptions struct {
	// MaxSize bounds the longest side; larger images are scaled down. Zero
	// means no bound.
	MaxSize int
	// Orient applies the EXIF orientation tag if present.
	Orient bool
	Logger *slog.Logger
}

// Decode reads and decodes the image at path. Any failure is a
// status.ExternalError.
func Decode(path string, opts DecodeOptions) (*Asset, error) {
	const op = "decode image"
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, status.Path(op, status.ExternalError, path, err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, status.Path(op, status.ExternalError, path, fmt.Errorf("decoding %d bytes: %w", len(data), err))
	}

	nrgba := toNRGBA(img, opts.MaxSize)
	if opts.Orient {
		if o := orientation(data); o > 1 {
			log.Debug("applying exif orientation", "path", path, "orientation", o)
			nrgba = Orient(nrgba, o)
		}
	}

	a := &Asset{
		Width:  nrgba.Rect.Dx(),
		Height: nrgba.Rect.Dy(),
		Format: format,
	}
	if nrgba.Opaque() {
		a.Channels = 3
		a.Pix = packRGB(nrgba)
	} else {
		a.Channels = 4
		a.Pix = nrgba.Pix
	}

	log.Info("image loaded", "path", path, "format", format,
		"width", a.Width, "height", a.Height, "channels", a.Channels)
	return a, nil
}

// toNRGBA converts img to a zero-origin *image.NRGBA, scaling it down so its
// longest side is at most maxSize.
func toNRGBA(img image.Image, maxSize int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		if w >= h {
			w, h = maxSize, max(1, h*maxSize/w)
		} else {
			w, h = max(1, w*maxSize/h), maxSize
		}
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Rect, img, b, draw.Src, nil)
		return dst
	}

	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*w {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

func packRGB(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			out = append(out, row[x], row[x+1], row[x+2])
		}
	}
	return out
}

// orientation returns the EXIF orientation of data, or 0 if it has none.
func orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 0
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0
	}
	o, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return o
}
