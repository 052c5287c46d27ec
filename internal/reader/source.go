package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// StdinPath selects standard input instead of a filesystem source.
const StdinPath = "-"

type sourceKind uint8

const (
	kindPipe sourceKind = iota
	kindFile
	kindStdin
)

func (k sourceKind) String() string {
	switch k {
	case kindPipe:
		return "pipe"
	case kindFile:
		return "file"
	default:
		return "stdin"
	}
}

type source struct {
	file *os.File
	kind sourceKind
}

// openSource opens path for reading. Named pipes are opened non-blocking so
// the open never stalls waiting for a writer and the resulting file stays
// pollable, which lets read deadlines interrupt a quiet pipe.
func openSource(path string) (*source, error) {
	if path == StdinPath {
		return &source{file: os.Stdin, kind: kindStdin}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if info.Mode()&os.ModeNamedPipe != 0 {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err != nil {
			return nil, fmt.Errorf("open pipe %s: %w", path, err)
		}
		return &source{file: os.NewFile(uintptr(fd), path), kind: kindPipe}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	return &source{file: f, kind: kindFile}, nil
}

func (s *source) Close() error {
	if s.kind == kindStdin {
		return nil
	}
	return s.file.Close()
}

// deadlineReader reads from an os.File in short deadline slices so a blocked
// read notices context cancellation within one poll interval. Files that do
// not support deadlines (regular files, some stdin bindings) fall through to
// plain reads.
type deadlineReader struct {
	ctx      context.Context
	file     *os.File
	poll     time.Duration
	deadline bool
}

func newDeadlineReader(ctx context.Context, f *os.File, poll time.Duration) *deadlineReader {
	r := &deadlineReader{ctx: ctx, file: f, poll: poll}
	r.deadline = f.SetReadDeadline(time.Now().Add(poll)) == nil
	return r
}

func (r *deadlineReader) Read(p []byte) (int, error) {
	for {
		if err := r.ctx.Err(); err != nil {
			return 0, err
		}
		if r.deadline {
			if err := r.file.SetReadDeadline(time.Now().Add(r.poll)); err != nil {
				r.deadline = false
			}
		}
		n, err := r.file.Read(p)
		if n > 0 || err == nil {
			return n, err
		}
		if r.deadline && errors.Is(err, os.ErrDeadlineExceeded) {
			continue
		}
		return n, err
	}
}

var _ io.Reader = (*deadlineReader)(nil)

// sleepCtx waits for d or cancellation, reporting false when the context
// ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
