package session

import (
	"strings"

	"github.com/josephlewis42/sesh/core/config"
	"github.com/josephlewis42/sesh/core/vos"
)

// LaunchStrategy selects how a command and its arguments become a process.
type LaunchStrategy int

const (
	// LaunchEscaped passes arguments verbatim to the new process.
	LaunchEscaped LaunchStrategy = iota
	// LaunchShell joins the command line and hands it to a shell, so
	// wildcards and other metacharacters are expanded.
	LaunchShell
)

func (l LaunchStrategy) String() string {
	switch l {
	case LaunchEscaped:
		return "escaped"
	case LaunchShell:
		return "shell"
	default:
		return "unknown"
	}
}

// State is everything a session knows. It's owned by exactly one Session and
// only ever handed out as a copy.
type State struct {
	// Dir is the absolute working directory. It always names an existing
	// directory after a successful Cd.
	Dir string
	// Env is the full environment handed to children.
	Env *vos.MapEnv

	// LastExitCode is the exit code of the most recent command, 0 on success.
	LastExitCode int
	// LastStderr is everything the most recent command wrote to stderr.
	LastStderr string
	// PendingStdin is fed to the next command and cleared when it starts.
	PendingStdin *string

	EchoStdout        bool
	EchoCommands      bool
	Tracing           bool
	EscapeArgs        bool
	FailOnNonzeroExit bool

	// Trace is the append-only record of what the session did.
	Trace []string
}

// NewState creates the state a session starts with.
func NewState(cfg *config.Configuration, env vos.EnvironFetcher, dir string) State {
	return State{
		Dir:               dir,
		Env:               vos.NewMapEnvFrom(env),
		EchoStdout:        cfg.EchoStdout,
		EchoCommands:      cfg.EchoCommands,
		Tracing:           cfg.Tracing,
		EscapeArgs:        cfg.EscapeArgs,
		FailOnNonzeroExit: cfg.FailOnNonzeroExit,
	}
}

// Strategy is the launch strategy in effect, it follows EscapeArgs.
func (st State) Strategy() LaunchStrategy {
	if st.EscapeArgs {
		return LaunchEscaped
	}
	return LaunchShell
}

// Clone returns a deep copy that shares nothing mutable with st.
func (st State) Clone() State {
	out := st
	if st.Env != nil {
		out.Env = st.Env.Clone()
	} else {
		out.Env = vos.NewMapEnv()
	}
	out.Trace = append([]string(nil), st.Trace...)
	if st.PendingStdin != nil {
		stdin := *st.PendingStdin
		out.PendingStdin = &stdin
	}
	return out
}

// TraceText renders the trace log one entry per line.
func (st State) TraceText() string {
	return strings.Join(st.Trace, "\n")
}

func (st *State) appendTrace(entry string) {
	if st.Tracing {
		st.Trace = append(st.Trace, entry)
	}
}
