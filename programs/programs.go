// Package programs names the shader programs the viewer can run and maps a
// render Mode to the vertex and fragment files that implement it.
package programs

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/stewi1014/procview/status"
)

//go:embed shaders
var shaders embed.FS

// EffectsDir is the directory fragment includes are resolved against,
// relative to the shader root.
const EffectsDir = "effects"

// DefaultVertexShader is the fullscreen-quad vertex program shared by the
// procedural fragments.
const DefaultVertexShader = "vertex.glsl"

// ShaderFS returns the shader sources compiled into the binary.
func ShaderFS() fs.FS {
	sub, err := fs.Sub(shaders, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}

type Program struct {
	Name string
	// Mode is the render mode the program serves. For Image programs the
	// path is ignored.
	Mode           Mode
	VertexShader   string
	FragmentShader string
}

var programs []Program

// NewProgram registers p. Names must be unique.
func NewProgram(p Program) error {
	if _, ok := Lookup(p.Name); ok {
		return fmt.Errorf("program %q already registered", p.Name)
	}
	programs = append(programs, p)
	return nil
}

// Lookup returns the program registered under name.
func Lookup(name string) (Program, bool) {
	for _, p := range programs {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}

// ForMode returns the program serving mode.
func ForMode(mode Mode) (Program, error) {
	for _, p := range programs {
		switch m := mode.(type) {
		case Procedural:
			if pm, ok := p.Mode.(Procedural); ok && pm.Variant == m.Variant {
				return p, nil
			}
		case Image:
			if _, ok := p.Mode.(Image); ok {
				return p, nil
			}
		default:
			return Program{}, status.New("select program", status.InvalidParameter, fmt.Errorf("unknown mode %v", mode))
		}
	}
	return Program{}, status.New("select program", status.InvalidParameter, fmt.Errorf("no program for mode %v", mode))
}

// SelectPaths returns the vertex and fragment files for mode.
func SelectPaths(mode Mode) (vertex, fragment string, err error) {
	p, err := ForMode(mode)
	if err != nil {
		return "", "", err
	}
	return p.VertexShader, p.FragmentShader, nil
}

func mustRegister(p Program) {
	if err := NewProgram(p); err != nil {
		panic(err)
	}
}
