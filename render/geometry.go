package render

import (
	"fmt"

	"github.com/stewi1014/procview/imageio"
)

// QuadLayout covers the viewport with a triangle strip of 2D positions.
func QuadLayout() VertexLayout {
	return VertexLayout{
		Vertices: []float32{
			-1, -1,
			1, -1,
			-1, 1,
			1, 1,
		},
		Components: []int32{2},
	}
}

// TexturedQuadLayout covers the viewport with two indexed triangles of
// position and texture coordinate. The top of the viewport samples the first
// texture row.
func TexturedQuadLayout() VertexLayout {
	return VertexLayout{
		Vertices: []float32{
			-1, -1, 0, 1,
			1, -1, 1, 1,
			1, 1, 1, 0,
			-1, 1, 0, 0,
		},
		Components: []int32{2, 2},
		Indices:    []uint32{0, 1, 2, 2, 3, 0},
	}
}

// Geometry is what the renderer draws with. Image and Dither are only set in
// image mode.
type Geometry struct {
	Quad         uint32
	TexturedQuad uint32
	Image        uint32
	Dither       uint32
}

func NewGeometry(gl GL) (*Geometry, error) {
	g := &Geometry{}
	var err error
	g.Quad, err = gl.CreateVertexLayout(QuadLayout())
	if err != nil {
		return nil, fmt.Errorf("creating quad: %w", err)
	}
	g.TexturedQuad, err = gl.CreateVertexLayout(TexturedQuadLayout())
	if err != nil {
		gl.DeleteVertexLayout(g.Quad)
		return nil, fmt.Errorf("creating textured quad: %w", err)
	}
	return g, nil
}

// LoadImage uploads asset and a ditherSize Bayer pattern. The asset's pixels
// are released once uploaded.
func (g *Geometry) LoadImage(gl GL, asset *imageio.Asset, ditherSize int) error {
	tex, err := gl.CreateTexture(TextureData{
		Pix:      asset.Pix,
		Width:    asset.Width,
		Height:   asset.Height,
		Channels: asset.Channels,
		Filter:   Linear,
	})
	if err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}
	asset.Release()

	pattern, err := DitherTexture(ditherSize)
	if err != nil {
		gl.DeleteTexture(tex)
		return err
	}
	dither, err := gl.CreateTexture(pattern)
	if err != nil {
		gl.DeleteTexture(tex)
		return fmt.Errorf("uploading dither pattern: %w", err)
	}

	g.Image, g.Dither = tex, dither
	return nil
}

// Delete releases everything g holds.
func (g *Geometry) Delete(gl GL) {
	if g.Dither != 0 {
		gl.DeleteTexture(g.Dither)
	}
	if g.Image != 0 {
		gl.DeleteTexture(g.Image)
	}
	if g.TexturedQuad != 0 {
		gl.DeleteVertexLayout(g.TexturedQuad)
	}
	if g.Quad != 0 {
		gl.DeleteVertexLayout(g.Quad)
	}
	*g = Geometry{}
}
