// Package gpu implements program.Compiler and render.GL on OpenGL 4.6 core
// through go-gl. A Device must be used on the thread that owns the current
// context.
package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	gl41 "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/glgl/v4.1-core/glgl"

	"github.com/stewi1014/procview/program"
)

var _ program.Compiler = (*Device)(nil)

type Device struct {
	logger  *slog.Logger
	buffers map[uint32][]uint32
}

// Init loads the GL entry points for the current context.
func Init(debug bool, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl.Init failed: %w", err)
	}
	// glgl reads errors through the 4.1 bindings, which keep their own
	// function table.
	if err := gl41.Init(); err != nil {
		return nil, fmt.Errorf("gl41.Init failed: %w", err)
	}

	logger.Info("OpenGL context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
	)

	d := &Device{
		logger:  logger,
		buffers: make(map[uint32][]uint32),
	}

	if debug {
		gl.Enable(gl.DEBUG_OUTPUT)
		gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
		gl.DebugMessageCallback(d.debugMessage, nil)
	}

	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	return d, glgl.Err()
}

func (d *Device) debugMessage(
	source,
	gltype,
	id,
	severity uint32,
	length int32,
	message string,
	user unsafe.Pointer,
) {
	severityStr := "unknown"
	level := slog.LevelDebug
	switch severity {
	case gl.DEBUG_SEVERITY_HIGH:
		severityStr = "high"
		level = slog.LevelError
	case gl.DEBUG_SEVERITY_MEDIUM:
		severityStr = "medium"
		level = slog.LevelWarn
	case gl.DEBUG_SEVERITY_LOW:
		severityStr = "low"
	case gl.DEBUG_SEVERITY_NOTIFICATION:
		severityStr = "notification"
	}

	sourceStr := "unknownSource"
	switch source {
	case gl.DEBUG_SOURCE_API:
		sourceStr = "api"
	case gl.DEBUG_SOURCE_APPLICATION:
		sourceStr = "application"
	case gl.DEBUG_SOURCE_OTHER:
		sourceStr = "other"
	case gl.DEBUG_SOURCE_SHADER_COMPILER:
		sourceStr = "shaderCompiler"
	case gl.DEBUG_SOURCE_THIRD_PARTY:
		sourceStr = "thirdParty"
	case gl.DEBUG_SOURCE_WINDOW_SYSTEM:
		sourceStr = "windowSystem"
	}

	typeStr := "unknownType"
	switch gltype {
	case gl.DEBUG_TYPE_ERROR:
		typeStr = "error"
	case gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR:
		typeStr = "deprecatedBehavior"
	case gl.DEBUG_TYPE_MARKER:
		typeStr = "marker"
	case gl.DEBUG_TYPE_OTHER:
		typeStr = "other"
	case gl.DEBUG_TYPE_PERFORMANCE:
		typeStr = "performance"
	case gl.DEBUG_TYPE_POP_GROUP:
		typeStr = "popGroup"
	case gl.DEBUG_TYPE_PORTABILITY:
		typeStr = "portability"
	case gl.DEBUG_TYPE_PUSH_GROUP:
		typeStr = "pushGroup"
	case gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:
		typeStr = "undefinedBehavior"
	}

	d.logger.Log(context.Background(), level, "gl debug",
		"source", sourceStr, "severity", severityStr, "type", typeStr, "id", id, "message", message)
}

func (d *Device) CreateShader(stage program.Stage) uint32 {
	switch stage {
	case program.VertexStage:
		return gl.CreateShader(gl.VERTEX_SHADER)
	case program.FragmentStage:
		return gl.CreateShader(gl.FRAGMENT_SHADER)
	}
	return 0
}

// CompileShader compiles source, which must be NUL terminated.
func (d *Device) CompileShader(shader uint32, source string) (bool, string) {
	cstring, free := gl.Strs(source)
	defer free()

	gl.ShaderSource(shader, 1, cstring, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)

	var l int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &l)
	if l <= 1 {
		return status != gl.FALSE, ""
	}
	log := strings.Repeat("\x00", int(l+1))
	gl.GetShaderInfoLog(shader, l, nil, gl.Str(log))
	return status != gl.FALSE, strings.TrimRight(log, "\x00\n")
}

func (d *Device) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (d *Device) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (d *Device) LinkProgram(prog uint32, shaders ...uint32) (bool, string) {
	for _, s := range shaders {
		gl.AttachShader(prog, s)
	}
	gl.LinkProgram(prog)
	for _, s := range shaders {
		gl.DetachShader(prog, s)
	}

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)

	var l int32
	gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &l)
	if l <= 1 {
		return status != gl.FALSE, ""
	}
	log := strings.Repeat("\x00", int(l+1))
	gl.GetProgramInfoLog(prog, l, nil, gl.Str(log))
	return status != gl.FALSE, strings.TrimRight(log, "\x00\n")
}

func (d *Device) DeleteProgram(prog uint32) {
	gl.DeleteProgram(prog)
}
