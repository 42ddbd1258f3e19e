package vos

import (
	"io"
	"os"
	"sync"
)

// VIOAdapter turns plain readers and writers into a VIO.
type VIOAdapter struct {
	IStdin  io.ReadCloser
	IStdout io.WriteCloser
	IStderr io.WriteCloser
}

// NewVIOAdapter wraps the streams, nil streams behave like /dev/null.
func NewVIOAdapter(stdin io.Reader, stdout, stderr io.Writer) *VIOAdapter {
	return &VIOAdapter{
		IStdin:  toReadCloserOrDiscard(stdin),
		IStdout: toWriteCloserOrDiscard(stdout),
		IStderr: toWriteCloserOrDiscard(stderr),
	}
}

// NewNullIO creates a valid /dev/null style I/O, reads won't work and
// writes will be discarded.
func NewNullIO() VIO {
	return NewVIOAdapter(nil, nil, nil)
}

// NewOSIO connects to the host process's standard streams. Closing the
// returned streams doesn't close the host's.
func NewOSIO() VIO {
	return NewVIOAdapter(io.NopCloser(os.Stdin), nopWriteCloser{os.Stdout}, nopWriteCloser{os.Stderr})
}

// NewSyncIO serializes writes to stdout and stderr through one lock so lines
// echoed from concurrent readers don't tear when both land on the same
// terminal.
func NewSyncIO(vio VIO) VIO {
	var mu sync.Mutex
	return &VIOAdapter{
		IStdin:  vio.Stdin(),
		IStdout: &lockedWriteCloser{mu: &mu, wrapped: vio.Stdout()},
		IStderr: &lockedWriteCloser{mu: &mu, wrapped: vio.Stderr()},
	}
}

var _ VIO = (*VIOAdapter)(nil)

func (pr *VIOAdapter) Stdin() io.ReadCloser {
	return pr.IStdin
}

func (pr *VIOAdapter) Stdout() io.WriteCloser {
	return pr.IStdout
}

func (pr *VIOAdapter) Stderr() io.WriteCloser {
	return pr.IStderr
}

func toWriteCloserOrDiscard(w io.Writer) io.WriteCloser {
	if w == nil {
		return &devNull{}
	}
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}

	return nopWriteCloser{w}
}

func toReadCloserOrDiscard(r io.Reader) io.ReadCloser {
	if r == nil {
		return &devNull{}
	}
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}

	return io.NopCloser(r)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

type lockedWriteCloser struct {
	mu      *sync.Mutex
	wrapped io.WriteCloser
}

func (l *lockedWriteCloser) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrapped.Write(p)
}

func (l *lockedWriteCloser) Close() error {
	return l.wrapped.Close()
}

// devNull implemnets io.Reader and io.Writer, always closing for reads and
// discarding writes.
type devNull struct{}

var _ io.ReadCloser = (*devNull)(nil)
var _ io.WriteCloser = (*devNull)(nil)

func (*devNull) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (*devNull) Close() error {
	return nil
}

func (*devNull) Write(b []byte) (int, error) {
	return len(b), nil
}
