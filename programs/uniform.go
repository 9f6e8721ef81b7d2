package programs

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Fields of uniform sets are uploaded by name from their `uniform` tag.

// ProceduralUniforms is what the procedural fragments read. The first block
// is a fixed palette; the rest changes every frame.
type ProceduralUniforms struct {
	Thickness    float32    `uniform:"thickness"`
	BranchAngle  float32    `uniform:"branch_angle"`
	BranchLength float32    `uniform:"branch_length"`
	Decay        float32    `uniform:"decay"`
	Color1       mgl32.Vec3 `uniform:"color1"`
	Color2       mgl32.Vec3 `uniform:"color2"`

	Resolution mgl32.Vec2 `uniform:"resolution"`
	Time       float32    `uniform:"time"`
	Zoom       float32    `uniform:"zoom"`
	Offset     mgl32.Vec2 `uniform:"offset"`
	ShowGlow   bool       `uniform:"show_glow"`
}

func (u *ProceduralUniforms) DefaultValues() {
	*u = ProceduralUniforms{
		Thickness:    0.005,
		BranchAngle:  math32.Pi / 6,
		BranchLength: 0.5,
		Decay:        0.5,
		Color1:       mgl32.Vec3{0, 0, 0},
		Color2:       mgl32.Vec3{0.5, 1, 0.7},
		Zoom:         1,
	}
}

// Quantization methods understood by fragment_postprocess.glsl.
const (
	QuantizeNone int32 = iota
	QuantizeChannels
	QuantizeLuma
)

// Texture units the post-processing pass samples from.
const (
	ImageUnit  int32 = 0
	DitherUnit int32 = 1
)

type PostProcessUniforms struct {
	Image          int32   `uniform:"image"`
	DitherPattern  int32   `uniform:"dither_pattern"`
	DitherStrength float32 `uniform:"dither_strength"`
	QuantizeMethod int32   `uniform:"quantize_method"`
	QuantizeLevel  int32   `uniform:"quantize_level"`
}

func (u *PostProcessUniforms) DefaultValues() {
	*u = PostProcessUniforms{
		Image:          ImageUnit,
		DitherPattern:  DitherUnit,
		DitherStrength: 0.08,
		QuantizeMethod: QuantizeChannels,
		QuantizeLevel:  8,
	}
}
