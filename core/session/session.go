// Package session runs external commands and filesystem operations with
// shell-like semantics inside a Session instead of a real shell.
//
// A Session owns a State: working directory, environment, the result of the
// last command and the policy flags that decide whether commands are echoed,
// traced, escaped and whether a non-zero exit is fatal. Operations run one
// at a time; the only concurrency is the pair of readers that drain a
// child's stdout and stderr while it runs.
//
// Scoped wraps a nested block so changes to directory, environment and
// policy are undone when it returns, even if it fails, while its trace log
// and last command result are kept.
package session

import (
	"os"

	"github.com/google/uuid"
	"github.com/josephlewis42/sesh/core/config"
	"github.com/josephlewis42/sesh/core/vos"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Session is the execution context for one logical sequence of operations.
// It isn't safe for concurrent use.
type Session struct {
	id    string
	cfg   *config.Configuration
	state State

	// startDir is the directory the session was created in, failed sessions
	// leave their trace logs under it.
	startDir string

	vio      vos.VIO
	fs       afero.Fs
	launcher Launcher
	log      *zap.Logger
}

// Option customizes a Session.
type Option func(*Session)

// WithIO sets the streams the session reads from and echoes to.
func WithIO(vio vos.VIO) Option {
	return func(s *Session) {
		s.vio = vio
	}
}

// WithFs sets the filesystem used for file operations, executable lookup
// and trace logs.
func WithFs(fsys afero.Fs) Option {
	return func(s *Session) {
		s.fs = fsys
	}
}

// WithLauncher replaces the process launcher.
func WithLauncher(l Launcher) Option {
	return func(s *Session) {
		s.launcher = l
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// New creates a session rooted at dir with a copy of env.
func New(cfg *config.Configuration, env vos.EnvironFetcher, dir string, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		state:    NewState(cfg, env, dir),
		startDir: dir,
		vio:      vos.NewOSIO(),
		fs:       afero.NewOsFs(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.vio = vos.NewSyncIO(s.vio)
	s.log = s.log.With(zap.String("session", s.id))
	if s.launcher == nil {
		s.launcher = &OSLauncher{Fs: s.fs, Shell: cfg.Shell, Log: s.log}
	}
	return s
}

// NewFromHost creates a session from a snapshot of the host process's
// environment and working directory. After this the session never reads
// either from the host again.
func NewFromHost(cfg *config.Configuration, opts ...Option) (*Session, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return New(cfg, vos.EnvList(os.Environ()), dir, opts...), nil
}

// ID uniquely identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Get returns a copy of the current state.
func (s *Session) Get() State {
	return s.state.Clone()
}

// Put replaces the current state.
func (s *Session) Put(st State) {
	s.state = st.Clone()
}

// Modify updates the state in place.
func (s *Session) Modify(update func(st *State)) {
	update(&s.state)
}

// IO returns the session's own streams.
func (s *Session) IO() vos.VIO {
	return s.vio
}

// Logger returns the session's diagnostic logger.
func (s *Session) Logger() *zap.Logger {
	return s.log
}

// LastExitCode returns the exit code of the most recent command.
func (s *Session) LastExitCode() int {
	return s.state.LastExitCode
}

// LastStderr returns what the most recent command wrote to stderr.
func (s *Session) LastStderr() string {
	return s.state.LastStderr
}

// TraceLog returns the trace log as text.
func (s *Session) TraceLog() string {
	return s.state.TraceText()
}

// Trace appends an entry to the trace log if tracing is on.
func (s *Session) Trace(entry string) {
	s.Modify(func(st *State) {
		st.appendTrace(entry)
	})
}
