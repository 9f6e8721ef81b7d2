// Package render draws frames for the viewer. A Renderer dispatches on the
// render mode, uploads the mode's uniforms and issues the draw call through a
// GL, which keeps the package free of any particular binding.
package render

import "github.com/go-gl/mathgl/mgl32"

type Primitive uint8

const (
	Triangles Primitive = iota
	TriangleStrip
)

func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle strip"
	}
	return "unknown primitive"
}

type Filter uint8

const (
	Linear Filter = iota
	Nearest
)

// VertexLayout describes interleaved float vertices. Attribute i has
// Components[i] floats and is bound to location i. Indices, if any, become
// the layout's element buffer.
type VertexLayout struct {
	Vertices   []float32
	Components []int32
	Indices    []uint32
}

// Stride is the size of one vertex in bytes.
func (l VertexLayout) Stride() int32 {
	var n int32
	for _, c := range l.Components {
		n += c
	}
	return n * 4
}

// TextureData is an 8 bit texture, top row first, with 1, 3 or 4 channels.
type TextureData struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
	Filter   Filter
	// Repeat tiles the texture instead of clamping to its edge.
	Repeat bool
}

// GL is the part of the graphics API used for drawing.
type GL interface {
	ClearColor(c mgl32.Vec4)
	Clear()
	Viewport(x, y, width, height int32)

	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, v mgl32.Vec2)
	Uniform3f(location int32, v mgl32.Vec3)
	Uniform1i(location int32, v int32)

	// CreateVertexLayout uploads l and returns a vertex array that binds it,
	// together with its element buffer when l has indices.
	CreateVertexLayout(l VertexLayout) (uint32, error)
	DeleteVertexLayout(vao uint32)
	BindVertexArray(vao uint32)

	CreateTexture(t TextureData) (uint32, error)
	DeleteTexture(texture uint32)
	BindTexture(unit int32, texture uint32)

	DrawArrays(mode Primitive, first, count int32)
	DrawElements(mode Primitive, count int32)

	// ReadPixels reads the RGB colour buffer into dst, bottom row first with
	// no row padding.
	ReadPixels(x, y, width, height int32, dst []byte) error
}

// Surface presents frames and delivers input.
type Surface interface {
	SwapBuffers()
	PollEvents()
}
