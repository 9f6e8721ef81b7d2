// Package status holds the failure kinds shared by the shader pipeline, the
// image collaborators and the export path.
//
// Every failure is an *Error carrying the operation that produced it, the
// source location it was raised at and a Kind. Kinds are themselves errors, so
// callers can test for them with errors.Is:
//
//	if errors.Is(err, status.AccessDenied) { ... }
package status

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Kind classifies a failure. The numeric value is the code reported when a
// failure reaches the top level; zero is reserved for success.
type Kind int

const (
	InvalidParameter Kind = iota + 1
	AccessDenied
	NotFound
	AllocationError
	ExternalError
	CompileError
	LinkError
	InvalidMode
)

var kindNames = [...]string{
	InvalidParameter: "invalid parameter",
	AccessDenied:     "access denied",
	NotFound:         "not found",
	AllocationError:  "allocation error",
	ExternalError:    "external error",
	CompileError:     "compile error",
	LinkError:        "link error",
	InvalidMode:      "invalid mode",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Code returns the numeric status code of k.
func (k Kind) Code() int { return int(k) }

func (k Kind) Error() string { return k.String() }

// Error is a failure raised by an operation.
type Error struct {
	Op   string
	Kind Kind
	// Path is the file the operation was working on, if any.
	Path string
	// Log is diagnostic text returned by the driver (shader info logs).
	Log string
	// File and Line locate where the failure was raised.
	File string
	Line int
	Err  error
}

// New returns an *Error for op, recording the caller's location.
func New(op string, kind Kind, err error) *Error {
	return newError(2, op, kind, "", err)
}

// Path is like New but records the file being operated on.
func Path(op string, kind Kind, path string, err error) *Error {
	return newError(2, op, kind, path, err)
}

func newError(skip int, op string, kind Kind, path string, err error) *Error {
	e := &Error{
		Op:   op,
		Kind: kind,
		Path: path,
		Err:  err,
	}
	if _, file, line, ok := runtime.Caller(skip); ok {
		e.File = filepath.Base(file)
		e.Line = line
	}
	return e
}

// WithLog attaches driver diagnostics to e and returns it.
func (e *Error) WithLog(log string) *Error {
	e.Log = strings.TrimRight(log, "\x00\n ")
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Log != "" {
		b.WriteString("\n")
		b.WriteString(e.Log)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Location returns "file:line" of where e was raised.
func (e *Error) Location() string {
	if e.File == "" {
		return "unknown file"
	}
	return fmt.Sprintf("%s:%d", e.File, e.Line)
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	var k Kind
	if errors.As(err, &k) {
		return k, true
	}
	return 0, false
}
