package main

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/stewi1014/procview/config"
	"github.com/stewi1014/procview/render"
	"github.com/stewi1014/procview/view"
)

// NewRenderWindow opens a window with a current core profile context.
func NewRenderWindow(cfg config.WindowSettings) (*RenderWindow, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, cfg.GLVersion[0])
	glfw.WindowHint(glfw.ContextVersionMinor, cfg.GLVersion[1])
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if cfg.Debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}
	window, err := glfw.CreateWindow(
		cfg.Width,
		cfg.Height,
		cfg.Title,
		nil,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}

	w := &RenderWindow{
		Window: window,
	}
	w.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return w, nil
}

type RenderWindow struct {
	*glfw.Window
}

func (w *RenderWindow) PollEvents() {
	glfw.PollEvents()
}

// FramebufferSize is the drawable size in pixels.
func (w *RenderWindow) FramebufferSize() (width, height int) {
	return w.GetFramebufferSize()
}

// toPixels converts window coordinates to framebuffer pixels, which differ
// on high density displays.
func (w *RenderWindow) toPixels(x, y float64) (float64, float64) {
	ww, wh := w.GetSize()
	fw, fh := w.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return x, y
	}
	return x * float64(fw) / float64(ww), y * float64(fh) / float64(wh)
}

// Bind routes window input to state. Resizes also update the GL viewport.
func (w *RenderWindow) Bind(state *view.State, gl render.GL) {
	w.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		state.Resize(width, height)
		gl.Viewport(0, 0, int32(width), int32(height))
		logger.Debug("resized", "width", width, "height", height)
	})

	w.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		state.Scroll(yoff)
	})

	w.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		switch button {
		case glfw.MouseButtonLeft:
			switch action {
			case glfw.Press:
				state.Press(w.toPixels(w.GetCursorPos()))
			case glfw.Release:
				state.Release()
			}
		case glfw.MouseButtonRight:
			if action == glfw.Press {
				state.ToggleGlow()
			}
		}
	})

	w.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		state.Move(w.toPixels(x, y))
	})

	w.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			win.SetShouldClose(true)
		case glfw.KeyG:
			state.ToggleGlow()
		case glfw.KeyR:
			state.Reset()
		}
	})
}
