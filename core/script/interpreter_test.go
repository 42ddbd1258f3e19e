package script

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/josephlewis42/sesh/core/config"
	"github.com/josephlewis42/sesh/core/session"
	"github.com/josephlewis42/sesh/core/vos"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// program computes a fake command's output from its arguments and stdin.
type program func(args []string, stdin string) (stdout string, code int)

type fakeLauncher struct {
	mu       sync.Mutex
	programs map[string]program
	ran      []string
}

func (f *fakeLauncher) Launch(_ context.Context, inv session.Invocation, _ session.State) (*session.Process, error) {
	prog, ok := f.programs[inv.Path]
	if !ok {
		return nil, vos.ErrNotFound
	}
	f.mu.Lock()
	f.ran = append(f.ran, inv.String())
	f.mu.Unlock()

	stdin := &stdinBuffer{closed: make(chan struct{})}
	var code int
	stdout := &lazyReader{ready: stdin.closed, produce: func() string {
		var out string
		out, code = prog(inv.Args, stdin.buf.String())
		return out
	}}
	wait := func() (int, error) {
		<-stdin.closed
		stdout.Read(nil)
		return code, nil
	}
	return session.NewProcess(stdin, stdout, io.NopCloser(strings.NewReader("")), wait, func() error { return nil }), nil
}

type stdinBuffer struct {
	buf    bytes.Buffer
	closed chan struct{}
	once   sync.Once
}

func (s *stdinBuffer) Write(p []byte) (int, error) { return s.buf.Write(p) }

func (s *stdinBuffer) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// lazyReader produces its contents once stdin has been closed.
type lazyReader struct {
	ready   <-chan struct{}
	produce func() string
	once    sync.Once
	r       *strings.Reader
}

func (l *lazyReader) Read(p []byte) (int, error) {
	l.once.Do(func() {
		<-l.ready
		l.r = strings.NewReader(l.produce())
	})
	return l.r.Read(p)
}

func (l *lazyReader) Close() error { return nil }

var testPrograms = map[string]program{
	"true":  func([]string, string) (string, int) { return "", 0 },
	"false": func([]string, string) (string, int) { return "", 1 },
	"say": func(args []string, _ string) (string, int) {
		return strings.Join(args, " ") + "\n", 0
	},
	"upper": func(_ []string, stdin string) (string, int) {
		return strings.ToUpper(stdin), 0
	},
	"count": func(_ []string, stdin string) (string, int) {
		return strings.Repeat("#", strings.Count(stdin, "\n")) + "\n", 0
	},
}

type testInterpreter struct {
	*Interpreter
	launcher *fakeLauncher
	fs       afero.Fs
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func newTestInterpreter(t *testing.T) *testInterpreter {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/home/user/project", 0o755))

	launcher := &fakeLauncher{programs: testPrograms}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	s := session.New(
		config.Default(),
		vos.EnvList{"HOME=/home/user", "USER=user", "PATH=/bin"},
		"/home/user",
		session.WithFs(fsys),
		session.WithLauncher(launcher),
		session.WithIO(vos.NewVIOAdapter(nil, stdout, stderr)),
	)
	return &testInterpreter{
		Interpreter: New(s),
		launcher:    launcher,
		fs:          fsys,
		stdout:      stdout,
		stderr:      stderr,
	}
}

func TestStripComment(t *testing.T) {
	cases := map[string]string{
		"echo hi # comment":     "echo hi ",
		"# whole line":          "",
		"echo '# quoted'":       "echo '# quoted'",
		`echo "a # b" # c`:      `echo "a # b" `,
		"echo a#b":              "echo a#b",
		`echo \# not a comment`: `echo \# not a comment`,
	}

	for in, want := range cases {
		assert.Equal(t, want, stripComment(in), "stripComment(%q)", in)
	}
}

func TestSplit(t *testing.T) {
	ti := newTestInterpreter(t)

	cmds, err := ti.Split(`say "hello world" $USER 'it''s' # ignored`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"say", "hello world", "user", "its"}}, cmds)

	cmds, err = ti.Split("say one | upper")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"say", "one"}, {"upper"}}, cmds)

	cmds, err = ti.Split("   ")
	require.NoError(t, err)
	assert.Empty(t, cmds)

	_, err = ti.Split(`say "unterminated`)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestSplit_literals(t *testing.T) {
	ti := newTestInterpreter(t)
	require.NoError(t, ti.Session.Setenv("BAR", "a | b"))

	cases := map[string][]string{
		`say "|"`:           {"say", "|"},
		`say '|'`:           {"say", "|"},
		`say \|`:            {"say", "|"},
		`say a|b`:           {"say", "a|b"},
		`say '$HOME'`:       {"say", "$HOME"},
		`say "$HOME"`:       {"say", "/home/user"},
		`say \$HOME`:        {"say", "$HOME"},
		`say "\$HOME"`:      {"say", "$HOME"},
		`say '$HOME'$HOME`:  {"say", "$HOME/home/user"},
		`say $BAR`:          {"say", "a | b"},
		`say "a\"b" 'c\d'`:  {"say", `a"b`, `c\d`},
		`say "it's | $BAR"`: {"say", "it's | a | b"},
	}

	for line, want := range cases {
		cmds, err := ti.Split(line)
		require.NoError(t, err, line)
		assert.Equal(t, [][]string{want}, cmds, line)
	}
}

func TestRunLine_external(t *testing.T) {
	ti := newTestInterpreter(t)

	require.NoError(t, ti.RunLine(context.Background(), "say hello there"))

	assert.Equal(t, "hello there\n", ti.stdout.String())
	assert.Equal(t, []string{"say hello there"}, ti.launcher.ran)
}

func TestRunLine_failure(t *testing.T) {
	ti := newTestInterpreter(t)

	err := ti.RunLine(context.Background(), "false")

	var cmdErr *session.CommandError
	assert.True(t, errors.As(err, &cmdErr), "got %v", err)
	assert.Equal(t, 1, ti.Session.LastExitCode())
}

func TestRunLine_pipe(t *testing.T) {
	ti := newTestInterpreter(t)

	require.NoError(t, ti.RunLine(context.Background(), "say one | upper | upper"))

	assert.Equal(t, "ONE\n", ti.stdout.String())
	assert.Equal(t, []string{"say one", "upper", "upper"}, ti.launcher.ran)
}

func TestRunLine_quotedPipeIsAnArgument(t *testing.T) {
	ti := newTestInterpreter(t)

	require.NoError(t, ti.RunLine(context.Background(), `say "|" '|'`))

	assert.Equal(t, "| |\n", ti.stdout.String())
	assert.Equal(t, []string{"say | |"}, ti.launcher.ran)
}

func TestRunLine_pipeErrors(t *testing.T) {
	ti := newTestInterpreter(t)

	assert.ErrorIs(t, ti.RunLine(context.Background(), "say one | | upper"), ErrSyntax)
	assert.Error(t, ti.RunLine(context.Background(), "say one | echo"))
	assert.Empty(t, ti.launcher.ran)
}

func TestRunLine_modifiers(t *testing.T) {
	ctx := context.Background()
	ti := newTestInterpreter(t)

	require.NoError(t, ti.RunLine(ctx, "in project pwd"))
	assert.Equal(t, "/home/user/project\n", ti.stdout.String())
	assert.Equal(t, "/home/user", ti.Session.Pwd())

	require.NoError(t, ti.RunLine(ctx, "noerr false"))
	assert.Equal(t, 1, ti.Session.LastExitCode())
	assert.True(t, ti.Session.Get().FailOnNonzeroExit)

	ti.stdout.Reset()
	require.NoError(t, ti.RunLine(ctx, "silently say hidden"))
	assert.Empty(t, ti.stdout.String())

	require.NoError(t, ti.RunLine(ctx, "verbosely noerr in project say shown"))
	assert.Equal(t, "say shown\nshown\n", ti.stdout.String())

	assert.ErrorIs(t, ti.RunLine(ctx, "in"), ErrSyntax)
	assert.ErrorIs(t, ti.RunLine(ctx, "silently"), ErrSyntax)
}

func TestRunLine_unescaped(t *testing.T) {
	ti := newTestInterpreter(t)
	var strategy session.LaunchStrategy
	ti.Interpreter.Session = session.New(
		config.Default(),
		vos.EnvList{},
		"/",
		session.WithFs(ti.fs),
		session.WithLauncher(launcherFunc(func(st session.State) {
			strategy = st.Strategy()
		})),
	)

	require.NoError(t, ti.RunLine(context.Background(), "unescaped anything"))
	assert.Equal(t, session.LaunchShell, strategy)
	assert.Equal(t, session.LaunchEscaped, ti.Session.Get().Strategy())
}

// launcherFunc records the state a command was launched with and runs a
// command that succeeds silently.
type launcherFunc func(st session.State)

func (f launcherFunc) Launch(_ context.Context, _ session.Invocation, st session.State) (*session.Process, error) {
	f(st)
	empty := func() io.ReadCloser { return io.NopCloser(strings.NewReader("")) }
	return session.NewProcess(
		&stdinBuffer{closed: make(chan struct{})},
		empty(),
		empty(),
		func() (int, error) { return 0, nil },
		func() error { return nil },
	), nil
}

func TestRunScript(t *testing.T) {
	ti := newTestInterpreter(t)
	script, err := os.ReadFile(filepath.Join("testdata", "basic.sesh"))
	require.NoError(t, err)

	err = ti.RunScript(context.Background(), "basic.sesh", bytes.NewReader(script))

	require.NoError(t, err)
	g := goldie.New(t, goldie.WithFixtureDir(filepath.Join("testdata", "golden")))
	g.Assert(t, "basic", ti.stdout.Bytes())
}

func TestRunScript_errorLocation(t *testing.T) {
	ti := newTestInterpreter(t)
	script := strings.Join([]string{
		"# setup",
		"say \\",
		"  starting",
		"false",
		"say unreachable",
	}, "\n")

	err := ti.RunScript(context.Background(), "job.sesh", strings.NewReader(script))

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "job.sesh:4: error running: false"), err.Error())
	assert.Equal(t, "starting\n", ti.stdout.String())
}

func TestRunScript_exit(t *testing.T) {
	ti := newTestInterpreter(t)

	err := ti.RunScript(context.Background(), "exit.sesh", strings.NewReader("say a\nexit 3\nsay b\n"))

	assert.Equal(t, session.Outcome{Kind: session.OutcomeExit, Code: 3}, session.Classify(err))
	assert.Equal(t, "a\n", ti.stdout.String())
}
