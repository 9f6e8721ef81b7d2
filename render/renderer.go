package render

import (
	"log/slog"
	"reflect"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/stewi1014/procview/program"
	"github.com/stewi1014/procview/programs"
	"github.com/stewi1014/procview/view"
)

type Renderer struct {
	GL      GL
	Surface Surface

	// Procedural holds the constant procedural uniforms. The per-frame
	// fields are overwritten from the view state each frame.
	Procedural  programs.ProceduralUniforms
	PostProcess programs.PostProcessUniforms
	Background  mgl32.Vec4

	// Clock returns seconds since start. Defaults to wall time since the
	// Renderer was created.
	Clock  func() float64
	Logger *slog.Logger

	locations map[uint32]map[string]int32
	warned    map[reflect.Type]bool
}

func NewRenderer(gl GL, surface Surface) *Renderer {
	r := &Renderer{
		GL:         gl,
		Surface:    surface,
		Background: mgl32.Vec4{0, 0, 0, 1},
	}
	r.Procedural.DefaultValues()
	r.PostProcess.DefaultValues()

	start := time.Now()
	r.Clock = func() float64 {
		return time.Since(start).Seconds()
	}
	return r
}

// RenderFrame draws one frame of mode with prog, presents it and processes
// pending input. A mode with no drawing path still clears and presents.
func (r *Renderer) RenderFrame(mode programs.Mode, prog program.Handle, geom *Geometry, state *view.State) {
	r.Draw(mode, prog, geom, state)
	r.Surface.SwapBuffers()
	r.Surface.PollEvents()
}

// Draw renders a frame into the back buffer without presenting it.
func (r *Renderer) Draw(mode programs.Mode, prog program.Handle, geom *Geometry, state *view.State) {
	gl := r.GL
	gl.ClearColor(r.Background)
	gl.Clear()
	gl.UseProgram(prog.ID())

	switch mode.(type) {
	case programs.Procedural:
		u := r.Procedural
		u.Resolution = mgl32.Vec2{float32(state.Width), float32(state.Height)}
		u.Time = float32(r.Clock())
		u.Zoom = float32(state.Zoom)
		u.Offset = mgl32.Vec2{float32(state.Offset[0]), float32(state.Offset[1])}
		u.ShowGlow = state.Glow
		r.loadUniforms(prog.ID(), &u)

		gl.BindVertexArray(geom.Quad)
		gl.DrawArrays(TriangleStrip, 0, 4)

	case programs.Image:
		u := r.PostProcess
		r.loadUniforms(prog.ID(), &u)

		gl.BindTexture(u.Image, geom.Image)
		gl.BindTexture(u.DitherPattern, geom.Dither)
		gl.BindVertexArray(geom.TexturedQuad)
		gl.DrawElements(Triangles, 6)

	default:
		r.logger().Debug("nothing to draw", "mode", mode)
	}
}

var (
	float32Type = reflect.TypeOf(float32(0))
	int32Type   = reflect.TypeOf(int32(0))
	boolType    = reflect.TypeOf(false)
	vec2Type    = reflect.TypeOf(mgl32.Vec2{})
	vec3Type    = reflect.TypeOf(mgl32.Vec3{})
)

// loadUniforms uploads each field of the struct pointed to by uniforms to the
// uniform named by its `uniform` tag. Names the program does not use are
// skipped.
func (r *Renderer) loadUniforms(prog uint32, uniforms any) {
	v := reflect.ValueOf(uniforms).Elem()
	t := v.Type()
	locs := r.uniformLocations(prog, t)

	for i := 0; i < v.NumField(); i++ {
		name, ok := t.Field(i).Tag.Lookup("uniform")
		if !ok {
			continue
		}
		loc := locs[name]
		if loc < 0 {
			continue
		}

		f := v.Field(i)
		switch f.Type() {
		case float32Type:
			r.GL.Uniform1f(loc, float32(f.Float()))
		case int32Type:
			r.GL.Uniform1i(loc, int32(f.Int()))
		case boolType:
			var b int32
			if f.Bool() {
				b = 1
			}
			r.GL.Uniform1i(loc, b)
		case vec2Type:
			r.GL.Uniform2f(loc, f.Interface().(mgl32.Vec2))
		case vec3Type:
			r.GL.Uniform3f(loc, f.Interface().(mgl32.Vec3))
		default:
			if r.warned == nil {
				r.warned = make(map[reflect.Type]bool)
			}
			if !r.warned[f.Type()] {
				r.warned[f.Type()] = true
				r.logger().Warn("unsupported uniform type", "uniform", name, "type", f.Type())
			}
		}
	}
}

func (r *Renderer) uniformLocations(prog uint32, t reflect.Type) map[string]int32 {
	if r.locations == nil {
		r.locations = make(map[uint32]map[string]int32)
	}
	locs, ok := r.locations[prog]
	if !ok {
		locs = make(map[string]int32)
		r.locations[prog] = locs
	}

	for i := 0; i < t.NumField(); i++ {
		name, ok := t.Field(i).Tag.Lookup("uniform")
		if !ok {
			continue
		}
		if _, ok := locs[name]; !ok {
			locs[name] = r.GL.UniformLocation(prog, name)
			if locs[name] < 0 {
				r.logger().Debug("uniform not active", "program", prog, "uniform", name)
			}
		}
	}
	return locs
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
