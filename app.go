package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/stewi1014/procview/config"
	"github.com/stewi1014/procview/gpu"
	"github.com/stewi1014/procview/imageio"
	"github.com/stewi1014/procview/program"
	"github.com/stewi1014/procview/programs"
	"github.com/stewi1014/procview/render"
	"github.com/stewi1014/procview/view"
)

func NewApplication(settings config.Settings, mode programs.Mode, log *slog.Logger) *Application {
	return &Application{
		settings: settings,
		mode:     mode,
		log:      log,
	}
}

type Application struct {
	settings config.Settings
	mode     programs.Mode
	log      *slog.Logger
}

// shaderFS is the configured shader directory, or the embedded shaders.
func (a *Application) shaderFS() fs.FS {
	if dir := a.settings.Shaders.Dir; dir != "" {
		a.log.Info("loading shaders from disk", "dir", dir)
		return os.DirFS(dir)
	}
	return programs.ShaderFS()
}

// Run shows the mode until the window is closed or ctx is cancelled, then
// exports the last frame. Everything created is released before Run returns.
func (a *Application) Run(ctx context.Context) error {
	s := a.settings

	// A bad image fails before any window opens.
	var asset *imageio.Asset
	if img, ok := a.mode.(programs.Image); ok {
		var err error
		asset, err = imageio.Decode(img.Path, imageio.DecodeOptions{
			MaxSize: s.Image.MaxTextureSize,
			Orient:  s.Image.Orient,
			Logger:  a.log,
		})
		if err != nil {
			return err
		}
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init failed: %w", err)
	}
	defer glfw.Terminate()

	window, err := NewRenderWindow(s.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	device, err := gpu.Init(s.Window.Debug, a.log)
	if err != nil {
		return err
	}

	vertex, fragment, err := programs.SelectPaths(a.mode)
	if err != nil {
		return err
	}
	builder := &program.Builder{
		FS:              a.shaderFS(),
		EffectsDir:      s.Shaders.EffectsDir,
		SourceLimit:     s.Shaders.MaxSourceSize,
		MaxIncludeDepth: s.Shaders.MaxIncludeDepth,
		Compiler:        device,
		Logger:          a.log,
	}
	prog, err := builder.Build(vertex, fragment)
	if err != nil {
		return err
	}
	defer prog.Delete(device)

	geom, err := render.NewGeometry(device)
	if err != nil {
		return err
	}
	defer geom.Delete(device)
	if asset != nil {
		if err := geom.LoadImage(device, asset, s.PostProcess.DitherSize); err != nil {
			return err
		}
	}

	width, height := window.FramebufferSize()
	state := view.New(width, height, view.Options{
		ZoomStep: s.View.ZoomStep,
		MinZoom:  s.View.MinZoom,
		MaxZoom:  s.View.MaxZoom,
	})
	state.Glow = s.View.Glow
	device.Viewport(0, 0, int32(width), int32(height))
	window.Bind(state, device)
	state.Move(window.toPixels(window.GetCursorPos()))

	renderer := render.NewRenderer(device, window)
	renderer.Logger = a.log
	renderer.Clock = glfw.GetTime
	applyUniformSettings(renderer, s)

	a.log.Info("running", "mode", a.mode, "width", width, "height", height)
	for !window.ShouldClose() {
		if ctx.Err() != nil {
			a.log.Info("stopping", "cause", context.Cause(ctx))
			break
		}
		renderer.RenderFrame(a.mode, prog, geom, state)
	}

	if s.Export.Enabled {
		// The back buffer is undefined after a swap; draw the frame again.
		renderer.Draw(a.mode, prog, geom, state)
		if err := render.Export(device, state.Width, state.Height, s.Export.Path, imageio.WritePNG); err != nil {
			return err
		}
		a.log.Info("exported", "path", s.Export.Path, "width", state.Width, "height", state.Height)
	}
	return nil
}

func applyUniformSettings(r *render.Renderer, s config.Settings) {
	p := s.Procedural
	r.Procedural.Thickness = p.Thickness
	r.Procedural.BranchAngle = p.BranchAngle
	r.Procedural.BranchLength = p.BranchLength
	r.Procedural.Decay = p.Decay
	r.Procedural.Color1 = p.Color1
	r.Procedural.Color2 = p.Color2

	pp := s.PostProcess
	r.PostProcess.DitherStrength = pp.DitherStrength
	r.PostProcess.QuantizeMethod = pp.QuantizeMethod
	r.PostProcess.QuantizeLevel = pp.QuantizeLevel
}
