package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/josephlewis42/sesh/core/config"
	"github.com/josephlewis42/sesh/core/tracelog"
	"go.uber.org/zap"
)

var (
	diagnostic     = color.New(color.FgRed, color.Bold)
	diagnosticHint = color.New(color.Faint)
)

// Func is a complete session body.
type Func func(ctx context.Context, s *Session) error

// Main runs fn in a new session seeded from the host process and returns
// the status the host should exit with.
func Main(ctx context.Context, cfg *config.Configuration, fn Func, opts ...Option) int {
	s, err := NewFromHost(cfg, opts...)
	if err != nil {
		diagnostic.Fprintf(color.Error, "couldn't start session: %v\n", err)
		return 1
	}
	return s.Execute(ctx, fn)
}

// Execute runs fn to completion and turns the result into an exit status.
//
// Exit requests end with their code, quiet ones without printing anything.
// Any other error, including a panic, is reported on stderr along with the
// trace log, which is written to a numbered file under the configured log
// directory if possible and printed inline otherwise.
func (s *Session) Execute(ctx context.Context, fn Func) int {
	outcome := Classify(s.protect(ctx, fn))

	switch outcome.Kind {
	case OutcomeSuccess:
		return 0
	case OutcomeQuietExit:
		return outcome.Code
	case OutcomeExit:
		if outcome.Code != 0 {
			diagnostic.Fprintf(s.vio.Stderr(), "exit status %d\n", outcome.Code)
		}
		return outcome.Code
	case OutcomeFailure:
		s.reportFailure(outcome.Err)
		return 1
	default:
		panic(fmt.Sprintf("unhandled outcome %v", outcome.Kind))
	}
}

func (s *Session) protect(ctx context.Context, fn Func) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx, s)
}

func (s *Session) traceReport() string {
	return fmt.Sprintf("# session %s\n%s\n", s.id, s.state.TraceText())
}

func (s *Session) reportFailure(err error) {
	stderr := s.vio.Stderr()
	diagnostic.Fprintf(stderr, "%v\n", err)

	if s.cfg.PersistTrace {
		dir := filepath.Join(s.startDir, s.cfg.LogDir)
		path, perr := tracelog.Persist(s.fs, dir, s.traceReport())
		if perr == nil {
			s.log.Debug("persisted trace log", zap.String("path", path))
			diagnosticHint.Fprintf(stderr, "trace log: %s\n", path)
			return
		}
		s.log.Debug("couldn't persist trace log", zap.String("dir", dir), zap.Error(perr))
	}

	diagnosticHint.Fprintf(stderr, "trace log:\n%s", s.traceReport())
}
