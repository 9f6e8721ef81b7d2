// Package config loads viewer settings from a JSON file over built-in
// defaults. A missing file is not an error.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/procview/program"
	"github.com/stewi1014/procview/programs"
	"github.com/stewi1014/procview/view"
)

type Settings struct {
	Window      WindowSettings      `json:"window"`
	Shaders     ShaderSettings      `json:"shaders"`
	View        ViewSettings        `json:"view"`
	Procedural  ProceduralSettings  `json:"procedural"`
	PostProcess PostProcessSettings `json:"postProcess"`
	Image       ImageSettings       `json:"image"`
	Export      ExportSettings      `json:"export"`
}

type WindowSettings struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title"`
	// GLVersion is the requested core profile context version.
	GLVersion [2]int `json:"glVersion"`
	// Debug enables GL debug output.
	Debug bool `json:"debug"`
	VSync bool `json:"vsync"`
}

type ShaderSettings struct {
	// Dir loads shaders from disk instead of the embedded copies.
	Dir             string `json:"dir"`
	EffectsDir      string `json:"effectsDir"`
	MaxSourceSize   int64  `json:"maxSourceSize"`
	MaxIncludeDepth int    `json:"maxIncludeDepth"`
}

type ViewSettings struct {
	ZoomStep float64 `json:"zoomStep"`
	MinZoom  float64 `json:"minZoom"`
	MaxZoom  float64 `json:"maxZoom"`
	Glow     bool    `json:"glow"`
}

type ProceduralSettings struct {
	Thickness    float32    `json:"thickness"`
	BranchAngle  float32    `json:"branchAngle"`
	BranchLength float32    `json:"branchLength"`
	Decay        float32    `json:"decay"`
	Color1       mgl32.Vec3 `json:"color1"`
	Color2       mgl32.Vec3 `json:"color2"`
}

type PostProcessSettings struct {
	DitherStrength float32 `json:"ditherStrength"`
	// DitherSize is the side of the Bayer pattern; a power of two.
	DitherSize     int   `json:"ditherSize"`
	QuantizeMethod int32 `json:"quantizeMethod"`
	QuantizeLevel  int32 `json:"quantizeLevel"`
}

type ImageSettings struct {
	// MaxTextureSize bounds the longest side of an uploaded image; larger
	// images are scaled down.
	MaxTextureSize int `json:"maxTextureSize"`
	// Orient applies the EXIF orientation tag.
	Orient bool `json:"orient"`
}

type ExportSettings struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

func Default() Settings {
	var proc programs.ProceduralUniforms
	proc.DefaultValues()
	var post programs.PostProcessUniforms
	post.DefaultValues()

	return Settings{
		Window: WindowSettings{
			Width:     800,
			Height:    600,
			Title:     "procview",
			GLVersion: [2]int{4, 6},
			VSync:     true,
		},
		Shaders: ShaderSettings{
			EffectsDir:      programs.EffectsDir,
			MaxSourceSize:   program.DefaultSourceLimit,
			MaxIncludeDepth: program.DefaultMaxIncludeDepth,
		},
		View: ViewSettings{
			ZoomStep: view.DefaultZoomStep,
			MinZoom:  view.DefaultMinZoom,
			MaxZoom:  view.DefaultMaxZoom,
		},
		Procedural: ProceduralSettings{
			Thickness:    proc.Thickness,
			BranchAngle:  proc.BranchAngle,
			BranchLength: proc.BranchLength,
			Decay:        proc.Decay,
			Color1:       proc.Color1,
			Color2:       proc.Color2,
		},
		PostProcess: PostProcessSettings{
			DitherStrength: post.DitherStrength,
			DitherSize:     8,
			QuantizeMethod: post.QuantizeMethod,
			QuantizeLevel:  post.QuantizeLevel,
		},
		Image: ImageSettings{
			MaxTextureSize: 8192,
			Orient:         true,
		},
		Export: ExportSettings{
			Enabled: true,
			Path:    "export/fractal.png",
		},
	}
}

// Load returns the defaults overlaid with the settings in path. Fields absent
// from the file keep their default.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	} else if err != nil {
		return s, fmt.Errorf("opening settings: %w", err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Default(), fmt.Errorf("parsing %s: %w", path, err)
	}

	return s, s.Validate()
}

// Validate reports settings the viewer cannot run with.
func (s Settings) Validate() error {
	var errs []error
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height))
	}
	if s.View.ZoomStep <= 1 {
		errs = append(errs, fmt.Errorf("zoomStep %v must be greater than 1", s.View.ZoomStep))
	}
	if s.View.MinZoom <= 0 || s.View.MaxZoom < s.View.MinZoom {
		errs = append(errs, fmt.Errorf("zoom range [%v, %v] is invalid", s.View.MinZoom, s.View.MaxZoom))
	}
	if n := s.PostProcess.DitherSize; n <= 0 || n&(n-1) != 0 {
		errs = append(errs, fmt.Errorf("ditherSize %d must be a power of two", n))
	}
	if m := s.PostProcess.QuantizeMethod; m < programs.QuantizeNone || m > programs.QuantizeLuma {
		errs = append(errs, fmt.Errorf("quantizeMethod %d is unknown", m))
	}
	if s.PostProcess.QuantizeLevel < 2 {
		errs = append(errs, fmt.Errorf("quantizeLevel %d must be at least 2", s.PostProcess.QuantizeLevel))
	}
	if s.Export.Enabled && s.Export.Path == "" {
		errs = append(errs, errors.New("export enabled without a path"))
	}
	return errors.Join(errs...)
}
