package program

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/stewi1014/procview/status"
)

// DefaultSourceLimit bounds the size of a single shader file when no limit is
// configured.
const DefaultSourceLimit = 1 << 20

// Source is shader text owned by the step that last produced it.
type Source struct {
	Name string
	Text []byte
}

func (s Source) Len() int { return len(s.Text) }

func (s Source) String() string { return string(s.Text) }

// CString returns the text NUL-terminated, the form gl.Strs expects.
func (s Source) CString() string { return string(s.Text) + "\x00" }

// Load reads the whole of name from fsys.
//
// A file that cannot be opened fails with status.AccessDenied, one larger than
// limit with status.AllocationError and a short read with
// status.ExternalError. The returned Source is always complete.
func Load(fsys fs.FS, name string, limit int64) (Source, error) {
	const op = "load"
	if limit <= 0 {
		limit = DefaultSourceLimit
	}

	f, err := fsys.Open(name)
	if err != nil {
		return Source{}, status.Path(op, status.AccessDenied, name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Source{}, status.Path(op, status.ExternalError, name, err)
	}
	if info.IsDir() {
		return Source{}, status.Path(op, status.AccessDenied, name, fmt.Errorf("is a directory"))
	}

	size := info.Size()
	if size < 0 || size > limit {
		return Source{}, status.Path(op, status.AllocationError, name,
			fmt.Errorf("%d bytes exceeds source limit of %d", size, limit))
	}

	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil {
		return Source{}, status.Path(op, status.ExternalError, name,
			fmt.Errorf("read %d of %d bytes: %w", n, size, err))
	}
	if n, err := f.Read(make([]byte, 1)); n > 0 || err != io.EOF {
		return Source{}, status.Path(op, status.ExternalError, name,
			fmt.Errorf("file changed size while reading, expected %d bytes", size))
	}

	return Source{Name: name, Text: buf}, nil
}
