package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/stewi1014/procview/imageio"
	"github.com/stewi1014/procview/program"
	"github.com/stewi1014/procview/programs"
	"github.com/stewi1014/procview/status"
	"github.com/stewi1014/procview/view"
)

type drawCall struct {
	Mode    Primitive
	First   int32
	Count   int32
	Indexed bool
	VAO     uint32
	Program uint32
}

// fakeGL records state changes and draws. Uniform locations are handed out
// per name; names in inactive report -1.
type fakeGL struct {
	next     uint32
	layouts  map[uint32]VertexLayout
	textures map[uint32]TextureData
	bound    map[int32]uint32
	vao      uint32
	program  uint32
	clears   int

	inactive     map[string]bool
	locations    map[string]int32
	lookups      int
	uniforms     map[string]any
	draws        []drawCall
	calls        []string
	framebuffer  []byte // RGB, bottom row first
	readErr      error
	textureError error
}

func newFakeGL() *fakeGL {
	return &fakeGL{
		layouts:   make(map[uint32]VertexLayout),
		textures:  make(map[uint32]TextureData),
		bound:     make(map[int32]uint32),
		inactive:  make(map[string]bool),
		locations: make(map[string]int32),
		uniforms:  make(map[string]any),
	}
}

func (g *fakeGL) name(loc int32) string {
	for n, l := range g.locations {
		if l == loc {
			return n
		}
	}
	return fmt.Sprint(loc)
}

func (g *fakeGL) ClearColor(mgl32.Vec4) {}
func (g *fakeGL) Clear() { g.clears++; g.calls = append(g.calls, "clear") }
func (g *fakeGL) Viewport(x, y, w, h int32) {}
func (g *fakeGL) UseProgram(p uint32) { g.program = p }
func (g *fakeGL) Uniform1f(l int32, v float32) { g.uniforms[g.name(l)] = v }
func (g *fakeGL) Uniform2f(l int32, v mgl32.Vec2) { g.uniforms[g.name(l)] = v }
func (g *fakeGL) Uniform3f(l int32, v mgl32.Vec3) { g.uniforms[g.name(l)] = v }
func (g *fakeGL) Uniform1i(l int32, v int32) { g.uniforms[g.name(l)] = v }

func (g *fakeGL) UniformLocation(p uint32, name string) int32 {
	g.lookups++
	if g.inactive[name] {
		return -1
	}
	if loc, ok := g.locations[name]; ok {
		return loc
	}
	loc := int32(len(g.locations))
	g.locations[name] = loc
	return loc
}

func (g *fakeGL) CreateVertexLayout(l VertexLayout) (uint32, error) {
	g.next++
	g.layouts[g.next] = l
	return g.next, nil
}

func (g *fakeGL) DeleteVertexLayout(vao uint32) { delete(g.layouts, vao) }
func (g *fakeGL) BindVertexArray(vao uint32) { g.vao = vao }

func (g *fakeGL) CreateTexture(t TextureData) (uint32, error) {
	if g.textureError != nil {
		return 0, g.textureError
	}
	g.next++
	g.textures[g.next] = t
	return g.next, nil
}

func (g *fakeGL) DeleteTexture(tex uint32) { delete(g.textures, tex) }
func (g *fakeGL) BindTexture(unit int32, tex uint32) { g.bound[unit] = tex }

func (g *fakeGL) DrawArrays(mode Primitive, first, count int32) {
	g.draws = append(g.draws, drawCall{Mode: mode, First: first, Count: count, VAO: g.vao, Program: g.program})
	g.calls = append(g.calls, "draw")
}

func (g *fakeGL) DrawElements(mode Primitive, count int32) {
	g.draws = append(g.draws, drawCall{
		Mode:    mode,
		Count:   count,
		Indexed: len(g.layouts[g.vao].Indices) > 0,
		VAO:     g.vao,
		Program: g.program,
	})
	g.calls = append(g.calls, "draw")
}

func (g *fakeGL) ReadPixels(x, y, w, h int32, dst []byte) error {
	if g.readErr != nil {
		return g.readErr
	}
	copy(dst, g.framebuffer)
	return nil
}

type fakeSurface struct {
	gl *fakeGL
}

func (s fakeSurface) SwapBuffers() { s.gl.calls = append(s.gl.calls, "swap") }
func (s fakeSurface) PollEvents() { s.gl.calls = append(s.gl.calls, "poll") }

// fakeGL also compiles and links, accepting any source.
func (g *fakeGL) CreateShader(program.Stage) uint32 { g.next++; return g.next }
func (g *fakeGL) CompileShader(uint32, string) (bool, string) { return true, "" }
func (g *fakeGL) DeleteShader(uint32) {}
func (g *fakeGL) CreateProgram() uint32 { g.next++; return g.next }
func (g *fakeGL) LinkProgram(uint32, ...uint32) (bool, string) { return true, "" }
func (g *fakeGL) DeleteProgram(uint32) {}

// link builds the embedded program for mode.
func link(t *testing.T, gl *fakeGL, mode programs.Mode) program.Handle {
	t.Helper()
	vertex, fragment, err := programs.SelectPaths(mode)
	if err != nil {
		t.Fatal(err)
	}
	b := &program.Builder{FS: programs.ShaderFS(), EffectsDir: programs.EffectsDir, Compiler: gl}
	prog, err := b.Build(vertex, fragment)
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func setup(t *testing.T) (*fakeGL, *Renderer, *Geometry, *view.State) {
	t.Helper()
	gl := newFakeGL()
	r := NewRenderer(gl, fakeSurface{gl})
	r.Clock = func() float64 { return 2.5 }
	geom, err := NewGeometry(gl)
	if err != nil {
		t.Fatal(err)
	}
	state := view.New(800, 600, view.Options{})
	return gl, r, geom, state
}

func TestRenderFrameProcedural(t *testing.T) {
	gl, r, geom, state := setup(t)
	state.Zoom = 4
	state.Glow = true
	mode := programs.Procedural{Variant: programs.Canopy}
	prog := link(t, gl, mode)

	r.RenderFrame(mode, prog, geom, state)

	if len(gl.draws) != 1 {
		t.Fatalf("want 1 draw, got %d", len(gl.draws))
	}
	d := gl.draws[0]
	if d.Mode != TriangleStrip || d.First != 0 || d.Count != 4 || d.Indexed {
		t.Errorf("want non-indexed strip of 4, got %+v", d)
	}
	if d.VAO != geom.Quad || d.Program != prog.ID() {
		t.Errorf("want quad with program %d, got vao %d program %d", prog.ID(), d.VAO, d.Program)
	}
	if n := len(gl.layouts[geom.Quad].Vertices) / 2; n != 4 {
		t.Errorf("quad has %d vertices", n)
	}

	want := map[string]any{
		"resolution":   mgl32.Vec2{800, 600},
		"time":         float32(2.5),
		"zoom":         float32(4),
		"show_glow":    int32(1),
		"thickness":    r.Procedural.Thickness,
		"branch_angle": r.Procedural.BranchAngle,
		"color2":       r.Procedural.Color2,
	}
	for name, v := range want {
		if gl.uniforms[name] != v {
			t.Errorf("uniform %s: want %v, got %v", name, v, gl.uniforms[name])
		}
	}

	wantCalls := []string{"clear", "draw", "swap", "poll"}
	if fmt.Sprint(gl.calls) != fmt.Sprint(wantCalls) {
		t.Errorf("want calls %v, got %v", wantCalls, gl.calls)
	}
}

func TestRenderFrameImage(t *testing.T) {
	gl, r, geom, state := setup(t)
	asset := &imageio.Asset{Pix: make([]byte, 2*2*3), Width: 2, Height: 2, Channels: 3}
	if err := geom.LoadImage(gl, asset, 4); err != nil {
		t.Fatal(err)
	}
	if asset.Pix != nil {
		t.Error("asset pixels should be released after upload")
	}
	mode := programs.Image{Path: "in.png"}
	prog := link(t, gl, mode)

	r.RenderFrame(mode, prog, geom, state)

	if len(gl.draws) != 1 {
		t.Fatalf("want 1 draw, got %d", len(gl.draws))
	}
	d := gl.draws[0]
	if d.Mode != Triangles || d.Count != 6 || !d.Indexed || d.VAO != geom.TexturedQuad || d.Program != prog.ID() {
		t.Errorf("want 6 indexed triangles over the textured quad, got %+v", d)
	}
	if gl.bound[programs.ImageUnit] != geom.Image || gl.bound[programs.DitherUnit] != geom.Dither {
		t.Errorf("textures bound %v, want image %d dither %d", gl.bound, geom.Image, geom.Dither)
	}
	if gl.uniforms["image"] != programs.ImageUnit || gl.uniforms["dither_pattern"] != programs.DitherUnit {
		t.Errorf("sampler uniforms: %v %v", gl.uniforms["image"], gl.uniforms["dither_pattern"])
	}
	if gl.uniforms["quantize_level"] != r.PostProcess.QuantizeLevel {
		t.Errorf("quantize_level: got %v", gl.uniforms["quantize_level"])
	}
	if _, ok := gl.uniforms["zoom"]; ok {
		t.Error("image mode should not upload procedural uniforms")
	}
}

type otherMode struct{ programs.Mode }

func TestRenderFrameUnknownModeDrawsNothing(t *testing.T) {
	gl, r, geom, state := setup(t)

	r.RenderFrame(otherMode{}, program.Handle{}, geom, state)
	r.RenderFrame(nil, program.Handle{}, geom, state)

	if len(gl.draws) != 0 {
		t.Errorf("want no draws, got %v", gl.draws)
	}
	wantCalls := []string{"clear", "swap", "poll", "clear", "swap", "poll"}
	if fmt.Sprint(gl.calls) != fmt.Sprint(wantCalls) {
		t.Errorf("want calls %v, got %v", wantCalls, gl.calls)
	}
}

func TestUniformLocationsCached(t *testing.T) {
	gl, r, geom, state := setup(t)
	gl.inactive["branch_angle"] = true
	mode := programs.Procedural{Variant: programs.Mandelbrot}
	prog := link(t, gl, mode)

	r.RenderFrame(mode, prog, geom, state)
	first := gl.lookups
	r.RenderFrame(mode, prog, geom, state)
	if gl.lookups != first {
		t.Errorf("locations looked up again: %d then %d", first, gl.lookups)
	}
	if _, ok := gl.uniforms["branch_angle"]; ok {
		t.Error("inactive uniform was uploaded")
	}
}

func TestTexturedQuadIndices(t *testing.T) {
	l := TexturedQuadLayout()
	if l.Stride() != 16 {
		t.Errorf("want stride 16, got %d", l.Stride())
	}
	want := []uint32{0, 1, 2, 2, 3, 0}
	if fmt.Sprint(l.Indices) != fmt.Sprint(want) {
		t.Errorf("want indices %v, got %v", want, l.Indices)
	}
	// Top left corner samples the first texture row.
	if v := l.Vertices[3*4 : 4*4]; v[0] != -1 || v[1] != 1 || v[2] != 0 || v[3] != 0 {
		t.Errorf("top left vertex: %v", v)
	}
}

func TestGeometryDelete(t *testing.T) {
	gl, _, geom, _ := setup(t)
	if err := geom.LoadImage(gl, &imageio.Asset{Pix: make([]byte, 4), Width: 1, Height: 1, Channels: 4}, 2); err != nil {
		t.Fatal(err)
	}
	geom.Delete(gl)
	if len(gl.layouts) != 0 || len(gl.textures) != 0 {
		t.Errorf("leaked %d layouts and %d textures", len(gl.layouts), len(gl.textures))
	}
}

func TestLoadImageFailure(t *testing.T) {
	gl, _, geom, _ := setup(t)
	gl.textureError = errors.New("out of memory")
	err := geom.LoadImage(gl, &imageio.Asset{Pix: make([]byte, 4), Width: 1, Height: 1, Channels: 4}, 2)
	if err == nil {
		t.Fatal("want error")
	}
	if geom.Image != 0 || len(gl.textures) != 0 {
		t.Error("failed upload should leave no textures")
	}
}

func TestBayerMatrix(t *testing.T) {
	m, err := BayerMatrix(2)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(m) != "[0 2 3 1]" {
		t.Errorf("2x2: got %v", m)
	}

	m, err = BayerMatrix(8)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[int]bool)
	for _, v := range m {
		if v < 0 || v >= 64 || seen[v] {
			t.Fatalf("8x8 matrix is not a permutation of 0..63: %v", m)
		}
		seen[v] = true
	}

	for _, n := range []int{0, 3, 6, -4} {
		if _, err := BayerMatrix(n); err == nil {
			t.Errorf("size %d: want error", n)
		}
	}
}

func TestDitherTexture(t *testing.T) {
	tex, err := DitherTexture(4)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Channels != 1 || tex.Filter != Nearest || !tex.Repeat || len(tex.Pix) != 16 {
		t.Errorf("unexpected texture %+v", tex)
	}
	// Index 0 sits at the centre of [0, 1/16).
	if tex.Pix[0] != 8 {
		t.Errorf("first threshold: want 8, got %d", tex.Pix[0])
	}
}

func TestFlipRows(t *testing.T) {
	pix := []byte{1, 1, 2, 2, 3, 3}
	FlipRows(pix, 2)
	if !bytes.Equal(pix, []byte{3, 3, 2, 2, 1, 1}) {
		t.Errorf("got %v", pix)
	}
	FlipRows(pix, 2)
	if !bytes.Equal(pix, []byte{1, 1, 2, 2, 3, 3}) {
		t.Errorf("flipping twice: got %v", pix)
	}
}

func TestExport(t *testing.T) {
	gl := newFakeGL()
	// 1x2 framebuffer, bottom row red, top row blue.
	gl.framebuffer = []byte{255, 0, 0, 0, 0, 255}

	var got image.Image
	var gotPath string
	err := Export(gl, 1, 2, "out.png", func(path string, img image.Image) error {
		got, gotPath = img, path
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "out.png" {
		t.Errorf("want out.png, got %q", gotPath)
	}
	if r, _, b, _ := got.At(0, 0).RGBA(); r != 0 || b != 0xffff {
		t.Errorf("top pixel should be blue, got %v", got.At(0, 0))
	}
	if r, _, b, _ := got.At(0, 1).RGBA(); r != 0xffff || b != 0 {
		t.Errorf("bottom pixel should be red, got %v", got.At(0, 1))
	}
}

func TestExportFailures(t *testing.T) {
	encode := func(string, image.Image) error {
		t.Error("encoder should not run")
		return nil
	}

	gl := newFakeGL()
	if err := Export(gl, 0, 10, "out.png", encode); !errors.Is(err, status.InvalidParameter) {
		t.Errorf("empty viewport: got %v", err)
	}
	if err := Export(gl, 1<<16, 1<<16, "out.png", encode); !errors.Is(err, status.AllocationError) {
		t.Errorf("huge viewport: got %v", err)
	}

	gl.readErr = errors.New("GL_INVALID_OPERATION")
	if err := Export(gl, 2, 2, "out.png", encode); !errors.Is(err, status.ExternalError) {
		t.Errorf("read failure: got %v", err)
	}
}
