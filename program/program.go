// Package program turns shader files into a linked GPU program: it loads
// sources, expands fragment includes, and compiles and links the stages
// through a Compiler.
package program

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/stewi1014/procview/status"
)

type Stage uint8

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// Compiler is the part of the graphics API the builder drives. Info logs are
// returned as text; ok reports the compile or link status.
type Compiler interface {
	CreateShader(stage Stage) uint32
	CompileShader(shader uint32, source string) (ok bool, log string)
	DeleteShader(shader uint32)
	CreateProgram() uint32
	LinkProgram(program uint32, shaders ...uint32) (ok bool, log string)
	DeleteProgram(program uint32)
}

// Handle is a linked program.
type Handle struct {
	id       uint32
	Vertex   string
	Fragment string
}

func (h Handle) ID() uint32 { return h.id }

func (h Handle) Valid() bool { return h.id != 0 }

// Delete releases the program. It is safe to call on an invalid Handle.
func (h *Handle) Delete(c Compiler) {
	if h.id != 0 {
		c.DeleteProgram(h.id)
		h.id = 0
	}
}

type Builder struct {
	FS fs.FS
	// EffectsDir is the directory fragment includes are resolved against.
	EffectsDir      string
	SourceLimit     int64
	MaxIncludeDepth int
	Compiler        Compiler
	Logger          *slog.Logger
}

// Build compiles the vertex source at vertexPath and the include-expanded
// fragment source at fragmentPath, and links them.
//
// Compilation stops at the first failing stage. Stage objects are deleted
// before Build returns whatever the outcome, and a program that fails to link
// is deleted too.
func (b *Builder) Build(vertexPath, fragmentPath string) (Handle, error) {
	log := b.logger()

	vertexSource, err := Load(b.FS, vertexPath, b.SourceLimit)
	if err != nil {
		return Handle{}, err
	}
	vertexShader, err := b.compile(VertexStage, vertexSource)
	if err != nil {
		return Handle{}, err
	}
	defer b.Compiler.DeleteShader(vertexShader)

	fragmentSource, err := Load(b.FS, fragmentPath, b.SourceLimit)
	if err != nil {
		return Handle{}, err
	}
	fragmentSource, err = Expand(b.FS, b.EffectsDir, fragmentSource, ExpandOptions{
		Limit:    b.SourceLimit,
		MaxDepth: b.MaxIncludeDepth,
		Logger:   log,
	})
	if err != nil {
		return Handle{}, err
	}
	fragmentShader, err := b.compile(FragmentStage, fragmentSource)
	if err != nil {
		return Handle{}, err
	}
	defer b.Compiler.DeleteShader(fragmentShader)

	prog := b.Compiler.CreateProgram()
	ok, info := b.Compiler.LinkProgram(prog, vertexShader, fragmentShader)
	if !ok {
		b.Compiler.DeleteProgram(prog)
		return Handle{}, status.Path("link", status.LinkError, fragmentPath, nil).WithLog(info)
	}
	if info != "" {
		log.Debug("program linked with diagnostics", "fragment", fragmentPath, "log", info)
	}

	log.Info("program built", "vertex", vertexPath, "fragment", fragmentPath, "id", prog)
	return Handle{id: prog, Vertex: vertexPath, Fragment: fragmentPath}, nil
}

func (b *Builder) compile(stage Stage, src Source) (uint32, error) {
	shader := b.Compiler.CreateShader(stage)
	ok, info := b.Compiler.CompileShader(shader, src.CString())
	if !ok {
		b.Compiler.DeleteShader(shader)
		b.logger().Debug("failed shader source", "stage", stage, "name", src.Name, "source", src.String())
		return 0, status.Path("compile "+stage.String(), status.CompileError, src.Name, nil).WithLog(info)
	}
	if info != "" {
		b.logger().Debug("shader compiled with diagnostics", "stage", stage, "name", src.Name, "log", info)
	}
	return shader, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
