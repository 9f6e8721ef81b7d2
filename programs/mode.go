package programs

import (
	"fmt"

	"github.com/stewi1014/procview/status"
)

// ImageModeName is the argument selecting Image mode.
const ImageModeName = "file"

// Mode selects what the viewer renders. It is either Procedural or Image.
type Mode interface {
	mode()
	String() string
}

type Variant int

const (
	Mandelbrot Variant = iota + 1
	Canopy
)

func (v Variant) String() string {
	switch v {
	case Mandelbrot:
		return "mandelbrot"
	case Canopy:
		return "canopy"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// Procedural renders a pattern computed per pixel.
type Procedural struct {
	Variant Variant
}

func (Procedural) mode() {}

func (p Procedural) String() string { return p.Variant.String() }

// Image renders the bitmap at Path through the post-processing pass.
type Image struct {
	Path string
}

func (Image) mode() {}

func (i Image) String() string { return ImageModeName + " " + i.Path }

// ParseMode reads `<mode> [path]` from args. Procedural modes are the names of
// registered procedural programs; "file" takes the image path.
func ParseMode(args []string) (Mode, error) {
	const op = "parse mode"
	if len(args) == 0 {
		return nil, status.New(op, status.InvalidMode, fmt.Errorf("missing mode"))
	}

	name := args[0]
	if name == ImageModeName {
		if len(args) != 2 || args[1] == "" {
			return nil, status.New(op, status.InvalidParameter, fmt.Errorf("%s requires exactly one image path", ImageModeName))
		}
		return Image{Path: args[1]}, nil
	}

	p, ok := Lookup(name)
	if !ok {
		return nil, status.New(op, status.InvalidMode, fmt.Errorf("unknown mode %q", name))
	}
	if _, ok := p.Mode.(Procedural); !ok {
		return nil, status.New(op, status.InvalidMode, fmt.Errorf("%q is not a procedural program", name))
	}
	if len(args) > 1 {
		return nil, status.New(op, status.InvalidParameter, fmt.Errorf("%s takes no arguments", name))
	}
	return p.Mode, nil
}

// ModeNames lists the accepted mode arguments.
func ModeNames() []string {
	var names []string
	for _, p := range programs {
		if _, ok := p.Mode.(Procedural); ok {
			names = append(names, p.Name)
		}
	}
	return append(names, ImageModeName)
}
