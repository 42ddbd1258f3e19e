package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/josephlewis42/sesh/core/vos"
)

// ErrNotDir is returned when a directory was expected.
var ErrNotDir = errors.New("not a directory")

// Cd changes the session directory. dir is resolved against the current
// directory and must name an existing directory; otherwise nothing changes.
func (s *Session) Cd(dir string) error {
	target := s.Absolute(dir)
	fi, err := s.fs.Stat(target)
	if err != nil {
		return WithContext(err, "cd %s", dir)
	}
	if !fi.IsDir() {
		return WithContext(ErrNotDir, "cd %s", dir)
	}
	s.Modify(func(st *State) {
		st.Dir = target
		st.appendTrace("cd " + quoteArg(target))
	})
	return nil
}

// Pwd returns the session directory.
func (s *Session) Pwd() string {
	return s.state.Dir
}

// Setenv sets an environment variable for this session and its children.
func (s *Session) Setenv(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=\x00") {
		return WithContext(fmt.Errorf("invalid variable name %q", key), "setenv")
	}
	s.Modify(func(st *State) {
		st.Env.Setenv(key, value)
		st.appendTrace("export " + key + "=" + quoteArg(value))
	})
	return nil
}

// Getenv returns the value of key, or "" if it's unset or empty.
func (s *Session) Getenv(key string) string {
	return s.state.Env.Getenv(key)
}

// LookupEnv returns the value of key. Empty variables count as unset.
func (s *Session) LookupEnv(key string) (string, bool) {
	return s.state.Env.LookupEnv(key)
}

// Unsetenv removes key from the environment.
func (s *Session) Unsetenv(key string) {
	s.Modify(func(st *State) {
		st.Env.Unsetenv(key)
		st.appendTrace("unset " + key)
	})
}

// AppendPath adds dir, made absolute, to the end of PATH.
func (s *Session) AppendPath(dir string) error {
	abs := s.Absolute(dir)
	path := abs
	if old := s.Getenv("PATH"); old != "" {
		path = old + string(os.PathListSeparator) + abs
	}
	return s.Setenv("PATH", path)
}

// Environ returns the environment children get in KEY=VALUE form.
func (s *Session) Environ() []string {
	return s.state.Env.Environ()
}

// ExpandEnv replaces $VAR and ${VAR} in text using the session environment.
func (s *Session) ExpandEnv(text string) string {
	return s.state.Env.ExpandEnv(text)
}

// SetStdin sets text to be fed to the next command.
func (s *Session) SetStdin(text string) {
	s.Modify(func(st *State) {
		st.PendingStdin = &text
	})
}

// Echo writes args separated by spaces to the session's stdout.
func (s *Session) Echo(args ...string) {
	fmt.Fprintln(s.vio.Stdout(), strings.Join(args, " "))
}

// EchoErr writes args separated by spaces to the session's stderr.
func (s *Session) EchoErr(args ...string) {
	fmt.Fprintln(s.vio.Stderr(), strings.Join(args, " "))
}

// Sleep suspends the session for d or until ctx is done.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	s.Trace("sleep " + d.String())

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return WithContext(ctx.Err(), "sleep %s", d)
	}
}

// Exit returns an error that ends the session with code.
func (s *Session) Exit(code int) error {
	s.Trace(fmt.Sprintf("exit %d", code))
	return &ExitRequest{Code: code}
}

// QuietExit returns an error that ends the session with code without
// printing anything.
func (s *Session) QuietExit(code int) error {
	return &ExitRequest{Code: code, Quiet: true}
}

// Fail returns an error that ends the session as a failure with msg.
func (s *Session) Fail(msg string) error {
	s.Trace("fail " + quoteArg(msg))
	return errors.New(msg)
}

// Which finds name the way an escaped command would be found.
func (s *Session) Which(name string) (string, bool) {
	path, err := vos.LookPath(s.fs, s.state.Env, s.state.Dir, name)
	if err != nil {
		return "", false
	}
	return filepath.Clean(path), true
}
