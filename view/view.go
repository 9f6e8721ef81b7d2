// Package view holds the pan and zoom state of the viewer and the input
// handlers that change it.
//
// A State is owned by the render loop's thread. Input callbacks run inside the
// event poll on that same thread, so State has no lock; it needs one if
// handlers ever run concurrently with rendering.
package view

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultZoomStep = 1.1
	DefaultMinZoom  = 1e-3
	DefaultMaxZoom  = 1e7
)

type Options struct {
	// ZoomStep is the factor applied per scroll notch. Must be > 1.
	ZoomStep float64
	MinZoom  float64
	MaxZoom  float64
}

type State struct {
	// Zoom magnifies the view; it is always in [MinZoom, MaxZoom].
	Zoom float64
	// Offset is the world point at the centre of the viewport.
	Offset mgl64.Vec2

	// Cursor is the last known cursor position in window pixels, top-left
	// origin. While Dragging it is the drag anchor.
	Cursor   mgl64.Vec2
	Dragging bool

	Width  int
	Height int

	Glow bool

	opts Options
}

func New(width, height int, opts Options) *State {
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = DefaultZoomStep
	}
	if opts.MinZoom <= 0 {
		opts.MinZoom = DefaultMinZoom
	}
	if opts.MaxZoom < opts.MinZoom {
		opts.MaxZoom = DefaultMaxZoom
	}

	s := &State{opts: opts}
	s.Resize(width, height)
	s.Reset()
	return s
}

// Reset returns to the initial view, keeping the viewport size and toggles.
func (s *State) Reset() {
	s.Zoom = 1
	s.Offset = mgl64.Vec2{}
	s.Dragging = false
}

func (s *State) Resize(width, height int) {
	s.Width, s.Height = width, height
}

// ScreenToWorld maps a window position to world space, the inverse of what
// the fragment programs do with gl_FragCoord.
func (s *State) ScreenToWorld(p mgl64.Vec2) mgl64.Vec2 {
	w, h := s.size()
	scale := 1 / (h * s.Zoom)
	return mgl64.Vec2{
		(p[0] - w/2) * scale,
		(h/2 - p[1]) * scale,
	}.Add(s.Offset)
}

// Press starts a drag at (x, y).
func (s *State) Press(x, y float64) {
	s.Cursor = mgl64.Vec2{x, y}
	s.Dragging = true
}

func (s *State) Release() {
	s.Dragging = false
}

// Move records the cursor at (x, y), panning by the distance moved if a drag
// is in progress.
func (s *State) Move(x, y float64) {
	pos := mgl64.Vec2{x, y}
	if s.Dragging {
		d := pos.Sub(s.Cursor)
		s.Pan(d[0], d[1])
	}
	s.Cursor = pos
}

// Pan moves the view so content follows a cursor moved by (dx, dy) pixels.
func (s *State) Pan(dx, dy float64) {
	_, h := s.size()
	scale := 1 / (h * s.Zoom)
	s.Offset = s.Offset.Add(mgl64.Vec2{-dx * scale, dy * scale})
}

// Scroll zooms in one step for positive yoff and out for negative, keeping the
// world point under the cursor fixed.
func (s *State) Scroll(yoff float64) {
	switch {
	case yoff > 0:
		s.ZoomAt(s.Cursor, s.opts.ZoomStep)
	case yoff < 0:
		s.ZoomAt(s.Cursor, 1/s.opts.ZoomStep)
	}
}

// ZoomAt multiplies the zoom by factor around the window position at.
func (s *State) ZoomAt(at mgl64.Vec2, factor float64) {
	if factor <= 0 {
		return
	}
	before := s.ScreenToWorld(at)
	s.Zoom = mgl64.Clamp(s.Zoom*factor, s.opts.MinZoom, s.opts.MaxZoom)
	after := s.ScreenToWorld(at)
	s.Offset = s.Offset.Add(before.Sub(after))
}

func (s *State) ToggleGlow() {
	s.Glow = !s.Glow
}

func (s *State) size() (w, h float64) {
	w, h = float64(s.Width), float64(s.Height)
	if h < 1 {
		h = 1
	}
	return w, h
}
