package session

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Scoped runs fn in a sub-session. When fn returns, or panics, the
// directory, environment and policy flags are put back the way they were.
// The trace log fn produced is appended to the outer one and its last exit
// code, stderr and pending stdin are kept. Errors from fn are returned
// unchanged.
func (s *Session) Scoped(fn func() error) error {
	saved := s.Get()
	s.Modify(func(st *State) {
		st.Trace = nil
	})

	defer func() {
		nested := s.state
		restored := saved
		restored.LastExitCode = nested.LastExitCode
		restored.LastStderr = nested.LastStderr
		restored.PendingStdin = nested.PendingStdin
		restored.Trace = append(saved.Trace, nested.Trace...)
		s.state = restored

		s.log.Debug("restored sub-session",
			zap.String("dir", restored.Dir),
			zap.Int("trace_entries", len(nested.Trace)))
	}()

	return fn()
}

// Sub is Scoped under a shorter name.
func (s *Session) Sub(fn func() error) error {
	return s.Scoped(fn)
}

// scopedWith changes the state with update then runs fn in a sub-session.
func (s *Session) scopedWith(update func(st *State), fn func() error) error {
	return s.Scoped(func() error {
		s.Modify(update)
		return fn()
	})
}

// Silently runs fn without echoing commands or their output.
func (s *Session) Silently(fn func() error) error {
	return s.scopedWith(func(st *State) {
		st.EchoStdout = false
		st.EchoCommands = false
	}, fn)
}

// Verbosely runs fn echoing both commands and their output.
func (s *Session) Verbosely(fn func() error) error {
	return s.scopedWith(func(st *State) {
		st.EchoStdout = true
		st.EchoCommands = true
	}, fn)
}

// PrintCommands runs fn with command echoing set to enabled.
func (s *Session) PrintCommands(enabled bool, fn func() error) error {
	return s.scopedWith(func(st *State) {
		st.EchoCommands = enabled
	}, fn)
}

// PrintStdout runs fn with output echoing set to enabled.
func (s *Session) PrintStdout(enabled bool, fn func() error) error {
	return s.scopedWith(func(st *State) {
		st.EchoStdout = enabled
	}, fn)
}

// Escaping runs fn with argument escaping set to enabled. Without escaping
// commands go through the shell.
func (s *Session) Escaping(enabled bool, fn func() error) error {
	return s.scopedWith(func(st *State) {
		st.EscapeArgs = enabled
	}, fn)
}

// ErrExit runs fn with FailOnNonzeroExit set to enabled.
func (s *Session) ErrExit(enabled bool, fn func() error) error {
	return s.scopedWith(func(st *State) {
		st.FailOnNonzeroExit = enabled
	}, fn)
}

// Tracing runs fn with trace logging set to enabled.
func (s *Session) Tracing(enabled bool, fn func() error) error {
	return s.scopedWith(func(st *State) {
		st.Tracing = enabled
	}, fn)
}

// Chdir runs fn in dir.
func (s *Session) Chdir(dir string, fn func() error) error {
	return s.Scoped(func() error {
		if err := s.Cd(dir); err != nil {
			return err
		}
		return fn()
	})
}

// WithTmpDir runs fn with a fresh temporary directory that's removed
// afterwards, whether fn succeeds or not.
func (s *Session) WithTmpDir(fn func(dir string) error) (err error) {
	dir, err := afero.TempDir(s.fs, "", "sesh")
	if err != nil {
		return WithContext(err, "creating temporary directory")
	}
	s.Trace("mktemp -d # " + dir)

	defer func() {
		if rmErr := s.fs.RemoveAll(dir); rmErr != nil && err == nil {
			err = WithContext(rmErr, "removing temporary directory %s", dir)
		}
	}()

	return s.Scoped(func() error {
		return fn(dir)
	})
}
