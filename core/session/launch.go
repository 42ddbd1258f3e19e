package session

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/josephlewis42/sesh/core/vos"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Invocation is a single command to run.
type Invocation struct {
	Path string
	Args []string
	// Stdin, if set, is fed to the command in place of the session's
	// pending stdin.
	Stdin *string
}

// String renders the invocation the way it's echoed.
func (inv Invocation) String() string {
	return FormatCommand(inv.Path, inv.Args)
}

// Launcher starts processes for a session.
type Launcher interface {
	// Launch starts inv in st's directory with st's environment using
	// st's launch strategy.
	Launch(ctx context.Context, inv Invocation, st State) (*Process, error)
}

// Process is a running child. Its owner must read Stdout and Stderr to EOF
// before calling Wait.
type Process struct {
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Stderr io.ReadCloser

	wait func() (int, error)
	kill func() error

	waitOnce sync.Once
	code     int
	waitErr  error
}

// NewProcess assembles a Process from its streams. wait blocks until the
// child exits and returns its exit code, kill terminates it.
func NewProcess(stdin io.WriteCloser, stdout, stderr io.ReadCloser, wait func() (int, error), kill func() error) *Process {
	return &Process{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		wait:   wait,
		kill:   kill,
	}
}

// Wait waits for the process to exit. It's safe to call more than once.
func (p *Process) Wait() (int, error) {
	p.waitOnce.Do(func() {
		p.code, p.waitErr = p.wait()
	})
	return p.code, p.waitErr
}

// Kill forcibly terminates the process.
func (p *Process) Kill() error {
	return p.kill()
}

// OSLauncher starts real operating system processes.
type OSLauncher struct {
	// Fs is searched for executables.
	Fs afero.Fs
	// Shell runs commands under LaunchShell, it's invoked as Shell -c LINE.
	Shell string
	Log   *zap.Logger
}

var _ Launcher = (*OSLauncher)(nil)

// Launch implements Launcher.
func (l *OSLauncher) Launch(ctx context.Context, inv Invocation, st State) (*Process, error) {
	var cmd *exec.Cmd
	switch st.Strategy() {
	case LaunchShell:
		line := strings.Join(append([]string{inv.Path}, inv.Args...), " ")
		cmd = exec.CommandContext(ctx, l.Shell, "-c", line)
	default:
		resolved, err := vos.LookPath(l.Fs, st.Env, st.Dir, inv.Path)
		if err != nil {
			return nil, err
		}
		cmd = exec.CommandContext(ctx, resolved, inv.Args...)
		cmd.Args[0] = inv.Path
	}
	cmd.Dir = st.Dir
	cmd.Env = st.Env.Environ()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	if l.Log != nil {
		l.Log.Debug("launched process",
			zap.String("path", cmd.Path),
			zap.Strings("args", inv.Args),
			zap.String("dir", st.Dir),
			zap.Stringer("strategy", st.Strategy()),
			zap.Int("pid", cmd.Process.Pid))
	}

	wait := func() (int, error) {
		return exitCode(cmd.Wait())
	}
	kill := func() error {
		return cmd.Process.Kill()
	}
	return NewProcess(stdin, stdout, stderr, wait, kill), nil
}

// exitCode maps the result of Wait to a shell style exit code. Children
// killed by a signal report 128 plus the signal number.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1, err
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	return exitErr.ExitCode(), nil
}

// isProcessDone reports whether err came from killing a process that had
// already exited.
func isProcessDone(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
