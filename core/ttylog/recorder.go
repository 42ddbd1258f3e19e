package ttylog

import (
	"io"
	"sync"
	"time"

	"github.com/josephlewis42/sesh/core/vos"
	"go.uber.org/zap"
)

// Recorder is a VIO that copies everything passing through it to a sink.
type Recorder struct {
	*vos.VIOAdapter
	mutex  sync.Mutex
	output LogSink
	log    *zap.Logger
	now    func() time.Time
}

var _ vos.VIO = (*Recorder)(nil)

// NewRecorder wraps toWrap so all of its traffic is forwarded to output.
// Errors from output are logged and otherwise ignored so a broken recording
// never breaks the session.
func NewRecorder(toWrap vos.VIO, output LogSink, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	recorder := &Recorder{
		output: output,
		log:    log,
		now:    time.Now,
	}

	recorder.VIOAdapter = &vos.VIOAdapter{
		IStdin:  &recorderReadCloser{fd: FDStdin, r: recorder, wrapped: toWrap.Stdin()},
		IStdout: &recorderWriteCloser{fd: FDStdout, r: recorder, wrapped: toWrap.Stdout()},
		IStderr: &recorderWriteCloser{fd: FDStderr, r: recorder, wrapped: toWrap.Stderr()},
	}

	return recorder
}

func (r *Recorder) record(fd FD, at time.Time, data []byte) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	err := r.output(&Event{
		TimestampMicros: at.UnixMicro(),
		FD:              fd,
		Data:            append([]byte(nil), data...),
	})
	if err != nil {
		r.log.Warn("couldn't record event", zap.Stringer("fd", fd), zap.Error(err))
	}
}

type recorderReadCloser struct {
	r       *Recorder
	fd      FD
	wrapped io.ReadCloser
}

var _ io.ReadCloser = (*recorderReadCloser)(nil)

func (rc *recorderReadCloser) Read(p []byte) (int, error) {
	at := rc.r.now()
	n, err := rc.wrapped.Read(p)
	if n > 0 {
		rc.r.record(rc.fd, at, p[:n])
	}
	return n, err
}

func (rc *recorderReadCloser) Close() error {
	return rc.wrapped.Close()
}

type recorderWriteCloser struct {
	r       *Recorder
	fd      FD
	wrapped io.WriteCloser
}

var _ io.WriteCloser = (*recorderWriteCloser)(nil)

func (wc *recorderWriteCloser) Write(p []byte) (int, error) {
	at := wc.r.now()
	n, err := wc.wrapped.Write(p)
	if n > 0 {
		wc.r.record(wc.fd, at, p[:n])
	}
	return n, err
}

func (wc *recorderWriteCloser) Close() error {
	return wc.wrapped.Close()
}
