package session

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

var commandEcho = color.New(color.Bold)

// RunFold runs inv to completion, folding each line of its stdout into
// init. The session's pending stdin is consumed, and LastExitCode and
// LastStderr are updated once the child exits.
//
// A non-zero exit is an error only if FailOnNonzeroExit is set; either way
// LastExitCode reflects it. The child is killed on every failure path.
func RunFold[T any](ctx context.Context, s *Session, inv Invocation, init T, fold func(T, string) T) (T, error) {
	stdin := s.state.PendingStdin
	if inv.Stdin != nil {
		stdin = inv.Stdin
	}
	line := inv.String()
	s.Modify(func(st *State) {
		st.PendingStdin = nil
		st.LastExitCode = 0
		st.LastStderr = ""
		st.appendTrace(line)
	})
	st := s.Get()

	if st.EchoCommands {
		commandEcho.Fprintln(s.vio.Stdout(), line)
	}

	proc, err := s.launcher.Launch(ctx, inv, st)
	if err != nil {
		return init, &LaunchError{Path: inv.Path, Args: inv.Args, Err: err}
	}
	start := time.Now()

	ok := false
	defer func() {
		if !ok {
			s.terminate(proc, line)
		}
	}()

	fed := s.feed(proc.Stdin, stdin, line)

	d := drainer{
		echoStdout: st.EchoStdout,
		stdout:     s.vio.Stdout(),
		stderr:     s.vio.Stderr(),
		abort: func() {
			proc.Kill()
		},
	}
	acc, stderr, panicked := drain(d, proc.Stdout, proc.Stderr, init, fold)
	<-fed
	proc.Stdout.Close()
	proc.Stderr.Close()
	if panicked != nil {
		panic(panicked)
	}

	code, err := proc.Wait()
	s.Modify(func(st *State) {
		st.LastStderr = stderr
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return acc, WithContext(ctxErr, "running %s", line)
	}
	if err != nil {
		return acc, WithContext(err, "waiting for %s", line)
	}
	s.Modify(func(st *State) {
		st.LastExitCode = code
	})
	s.log.Debug("process exited",
		zap.String("command", line),
		zap.Int("code", code),
		zap.Duration("duration", time.Since(start)))

	if code != 0 && st.FailOnNonzeroExit {
		return acc, &CommandError{Path: inv.Path, Args: inv.Args, ExitCode: code, Stderr: stderr}
	}
	ok = true
	return acc, nil
}

// feed writes text to the child's stdin and closes it alongside the drain
// workers. The returned channel is closed once stdin is.
func (s *Session) feed(w io.WriteCloser, text *string, line string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer w.Close()
		if text == nil {
			return
		}
		if _, err := io.WriteString(w, *text); err != nil {
			s.log.Debug("child didn't read all of stdin", zap.String("command", line), zap.Error(err))
		}
	}()
	return done
}

// terminate kills a child left behind by a failed run and reaps it.
func (s *Session) terminate(proc *Process, line string) {
	err := proc.Kill()
	switch {
	case err == nil:
		s.log.Warn("killed child process", zap.String("command", line))
	case isProcessDone(err):
	default:
		s.log.Debug("couldn't kill child process", zap.String("command", line), zap.Error(err))
	}
	proc.Wait()
}

// RunCommand runs inv and returns its stdout with every line terminated by
// a newline.
func (s *Session) RunCommand(ctx context.Context, inv Invocation) (string, error) {
	var b strings.Builder
	_, err := RunFold(ctx, s, inv, &b, func(b *strings.Builder, line string) *strings.Builder {
		b.WriteString(line)
		b.WriteByte('\n')
		return b
	})
	return b.String(), err
}

// Run runs path with args and returns its stdout.
func (s *Session) Run(ctx context.Context, path string, args ...string) (string, error) {
	return s.RunCommand(ctx, Invocation{Path: path, Args: args})
}

// RunLines runs path with args and returns its stdout split into lines.
func (s *Session) RunLines(ctx context.Context, path string, args ...string) ([]string, error) {
	return RunFold(ctx, s, Invocation{Path: path, Args: args}, []string(nil), func(acc []string, line string) []string {
		return append(acc, line)
	})
}

// RunDiscard runs path with args and throws its stdout away. Output is
// still echoed if EchoStdout is set.
func (s *Session) RunDiscard(ctx context.Context, path string, args ...string) error {
	_, err := RunFold(ctx, s, Invocation{Path: path, Args: args}, struct{}{}, func(acc struct{}, _ string) struct{} {
		return acc
	})
	return err
}
