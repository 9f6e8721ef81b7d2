package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/stewi1014/procview/config"
	"github.com/stewi1014/procview/programs"
	"github.com/stewi1014/procview/render"
	"github.com/stewi1014/procview/status"
)

// A missing image fails in decode, before GLFW is touched, so this runs
// without a display.
func TestRunMissingImage(t *testing.T) {
	mode := programs.Image{Path: filepath.Join(t.TempDir(), "missing.png")}
	app := NewApplication(config.Default(), mode, slog.Default())

	err := app.Run(context.Background())
	if !errors.Is(err, status.ExternalError) {
		t.Errorf("want external error, got %v", err)
	}
}

func TestApplyUniformSettings(t *testing.T) {
	s := config.Default()
	s.Procedural.Color2 = mgl32.Vec3{1, 0, 0}
	s.Procedural.Decay = 0.25
	s.PostProcess.QuantizeLevel = 4

	r := render.NewRenderer(nil, nil)
	applyUniformSettings(r, s)

	if r.Procedural.Color2 != s.Procedural.Color2 || r.Procedural.Decay != 0.25 {
		t.Errorf("procedural settings not applied: %+v", r.Procedural)
	}
	if r.PostProcess.QuantizeLevel != 4 {
		t.Errorf("want quantize level 4, got %d", r.PostProcess.QuantizeLevel)
	}
	if r.PostProcess.Image != programs.ImageUnit {
		t.Error("texture units should keep their defaults")
	}
}

func TestFailureAttrs(t *testing.T) {
	attrs := func(err error) map[string]any {
		a := failureAttrs(err)
		m := make(map[string]any)
		for i := 0; i+1 < len(a); i += 2 {
			m[a[i].(string)] = a[i+1]
		}
		return m
	}

	err := fmt.Errorf("loading settings: %w", status.Path("load", status.AccessDenied, "settings.json", errors.New("denied")))
	got := attrs(err)
	if got["kind"] != status.AccessDenied.String() || got["code"] != status.AccessDenied.Code() || got["op"] != "load" {
		t.Errorf("status detail missing: %v", got)
	}
	if _, ok := got["location"]; !ok {
		t.Error("want location of a status error")
	}

	got = attrs(fmt.Errorf("decode: %w", status.ExternalError))
	if got["kind"] != status.ExternalError.String() || got["code"] != status.ExternalError.Code() {
		t.Errorf("bare kind not reported: %v", got)
	}
	if _, ok := got["op"]; ok {
		t.Error("bare kind has no op")
	}

	got = attrs(errors.New("plain"))
	if len(got) != 1 {
		t.Errorf("plain error should only carry err, got %v", got)
	}
}
