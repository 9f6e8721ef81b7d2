package program

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"

	"github.com/stewi1014/procview/status"
)

// DefaultMaxIncludeDepth is the nesting limit used when ExpandOptions leaves
// MaxDepth unset.
const DefaultMaxIncludeDepth = 32

// includeDirective matches `#include "name"`. Anything else that starts with
// #include is left in the text as is.
var includeDirective = regexp.MustCompile(`#include[ \t]*"([^"\n]*)"`)

type ExpandOptions struct {
	// Limit is passed to Load for every included file.
	Limit int64
	// MaxDepth bounds include nesting.
	MaxDepth int
	Logger   *slog.Logger
}

// Expand replaces every include directive in src with the contents of the
// named file, resolved against baseDir in fsys. Included text is expanded in
// turn, so the result contains no directive.
//
// A file that includes itself, directly or through other files, fails with
// status.InvalidParameter. Any load failure is returned with its kind intact.
func Expand(fsys fs.FS, baseDir string, src Source, opts ExpandOptions) (Source, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxIncludeDepth
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &expander{
		fsys:    fsys,
		baseDir: baseDir,
		opts:    opts,
		active:  make(map[string]bool),
	}

	var out bytes.Buffer
	out.Grow(len(src.Text))
	if err := e.expand(&out, src.Name, src.Text, 0); err != nil {
		return Source{}, err
	}

	return Source{Name: src.Name, Text: out.Bytes()}, nil
}

type expander struct {
	fsys    fs.FS
	baseDir string
	opts    ExpandOptions
	// active holds the files on the current include chain.
	active map[string]bool
}

func (e *expander) expand(out *bytes.Buffer, name string, text []byte, depth int) error {
	const op = "expand"
	e.active[name] = true
	defer delete(e.active, name)

	for {
		loc := includeDirective.FindSubmatchIndex(text)
		if loc == nil {
			out.Write(text)
			return nil
		}

		out.Write(text[:loc[0]])

		file := string(text[loc[2]:loc[3]])
		full := path.Join(e.baseDir, file)
		if e.active[full] {
			return status.Path(op, status.InvalidParameter, name,
				fmt.Errorf("include cycle through %q", full))
		}
		if depth+1 > e.opts.MaxDepth {
			return status.Path(op, status.InvalidParameter, name,
				fmt.Errorf("include of %q nests deeper than %d", full, e.opts.MaxDepth))
		}

		included, err := Load(e.fsys, full, e.opts.Limit)
		if err != nil {
			return fmt.Errorf("%s: include %q: %w", name, file, err)
		}
		e.opts.Logger.Debug("include", "from", name, "file", full, "bytes", included.Len())

		if err := e.expand(out, full, included.Text, depth+1); err != nil {
			return err
		}

		text = text[loc[1]:]
	}
}
