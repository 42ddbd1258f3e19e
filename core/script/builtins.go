package script

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/josephlewis42/sesh/core/session"
	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds every registered builtin by name.
var AllBuiltins = make(map[string]Builtin)

var builtinUsage = make(map[string]string)

// Builtin is a command run inside the interpreter instead of as a process.
type Builtin interface {
	Main(ctx context.Context, in *Interpreter, args []string) error
}

// BuiltinFunc adapts a function to a Builtin.
type BuiltinFunc func(ctx context.Context, in *Interpreter, args []string) error

// Main implements Builtin.
func (f BuiltinFunc) Main(ctx context.Context, in *Interpreter, args []string) error {
	return f(ctx, in, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// BuiltinEntry describes a builtin for help output.
type BuiltinEntry struct {
	Name  string
	Usage string
}

// ListBuiltins returns every builtin sorted by name.
func ListBuiltins() []BuiltinEntry {
	var out []BuiltinEntry
	for name := range AllBuiltins {
		out = append(out, BuiltinEntry{Name: name, Usage: builtinUsage[name]})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func register(name, usage string, fn BuiltinFunc) {
	AllBuiltins[name] = fn
	builtinUsage[name] = usage
}

// parseOpts parses args with opts, returning a usage error if they're
// invalid.
func parseOpts(opts *getopt.Set, args []string) error {
	opts.SetProgram(args[0])
	if err := opts.Getopt(args, nil); err != nil {
		var usage strings.Builder
		opts.PrintUsage(&usage)
		return fmt.Errorf("%v\n%s", err, strings.TrimSpace(usage.String()))
	}
	return nil
}

func usageError(args []string) error {
	return fmt.Errorf("usage: %s", builtinUsage[args[0]])
}

// Cd changes the session directory, with no argument it goes to $HOME.
func Cd(_ context.Context, in *Interpreter, args []string) error {
	switch len(args) {
	case 1:
		home := in.Session.Getenv("HOME")
		if home == "" {
			return fmt.Errorf("%s: HOME not set", args[0])
		}
		return in.Session.Cd(home)
	case 2:
		return in.Session.Cd(args[1])
	default:
		return fmt.Errorf("%s: too many arguments", args[0])
	}
}

// Pwd prints the session directory.
func Pwd(_ context.Context, in *Interpreter, args []string) error {
	fmt.Fprintln(in.Stdout(), in.Session.Pwd())
	return nil
}

// Export sets environment variables given as NAME=VALUE.
func Export(_ context.Context, in *Interpreter, args []string) error {
	if len(args) < 2 {
		for _, kv := range in.Session.Environ() {
			fmt.Fprintf(in.Stdout(), "export %s\n", kv)
		}
		return nil
	}
	for _, kv := range args[1:] {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return usageError(args)
		}
		if err := in.Session.Setenv(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Unset removes environment variables.
func Unset(_ context.Context, in *Interpreter, args []string) error {
	for _, name := range args[1:] {
		in.Session.Unsetenv(name)
	}
	return nil
}

// sessionFlags maps set's option letters to the policy they control.
var sessionFlags = map[byte]func(st *session.State, on bool){
	'e': func(st *session.State, on bool) { st.FailOnNonzeroExit = on },
	'x': func(st *session.State, on bool) { st.EchoCommands = on },
	'v': func(st *session.State, on bool) { st.EchoStdout = on },
	't': func(st *session.State, on bool) { st.Tracing = on },
	's': func(st *session.State, on bool) { st.EscapeArgs = !on },
}

// Set turns session policies on with -FLAG and off with +FLAG. With no
// arguments it prints the current policies.
func Set(_ context.Context, in *Interpreter, args []string) error {
	if len(args) == 1 {
		st := in.Session.Get()
		w := in.Stdout()
		printFlag := func(flag string, on bool) {
			sign := "+"
			if on {
				sign = "-"
			}
			fmt.Fprintf(w, "set %s%s\n", sign, flag)
		}
		printFlag("e", st.FailOnNonzeroExit)
		printFlag("x", st.EchoCommands)
		printFlag("v", st.EchoStdout)
		printFlag("t", st.Tracing)
		printFlag("s", !st.EscapeArgs)
		return nil
	}

	type change struct {
		apply func(st *session.State, on bool)
		on    bool
	}
	var changes []change
	for _, arg := range args[1:] {
		if len(arg) < 2 || (arg[0] != '-' && arg[0] != '+') {
			return usageError(args)
		}
		for i := 1; i < len(arg); i++ {
			apply, ok := sessionFlags[arg[i]]
			if !ok {
				return fmt.Errorf("%s: unknown option %c%c", args[0], arg[0], arg[i])
			}
			changes = append(changes, change{apply: apply, on: arg[0] == '-'})
		}
	}

	in.Session.Modify(func(st *session.State) {
		for _, c := range changes {
			c.apply(st, c.on)
		}
	})
	return nil
}

// Echo prints its arguments.
func Echo(_ context.Context, in *Interpreter, args []string) error {
	opts := getopt.New()
	noNewline := opts.Bool('n', "don't print the trailing newline")
	if err := parseOpts(opts, args); err != nil {
		return err
	}

	text := strings.Join(opts.Args(), " ")
	if *noNewline {
		io.WriteString(in.Stdout(), text)
		return nil
	}
	in.Session.Echo(text)
	return nil
}

// Sleep pauses the session. The duration is seconds or a Go duration like
// 1m30s.
func Sleep(ctx context.Context, in *Interpreter, args []string) error {
	if len(args) != 2 {
		return usageError(args)
	}
	d, err := parseDuration(args[1])
	if err != nil {
		return fmt.Errorf("%s: %v", args[0], err)
	}
	return in.Session.Sleep(ctx, d)
}

func parseDuration(text string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(text, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid time interval %q", text)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(text)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid time interval %q", text)
	}
	return d, nil
}

func exitCode(args []string) (int, error) {
	switch len(args) {
	case 1:
		return 0, nil
	case 2:
		code, err := strconv.Atoi(args[1])
		if err != nil {
			return 0, fmt.Errorf("%s: %s: numeric argument required", args[0], args[1])
		}
		return code, nil
	default:
		return 0, fmt.Errorf("%s: too many arguments", args[0])
	}
}

// Exit ends the session.
func Exit(_ context.Context, in *Interpreter, args []string) error {
	code, err := exitCode(args)
	if err != nil {
		return err
	}
	return in.Session.Exit(code)
}

// QuietExit ends the session without any diagnostics.
func QuietExit(_ context.Context, in *Interpreter, args []string) error {
	code, err := exitCode(args)
	if err != nil {
		return err
	}
	return in.Session.QuietExit(code)
}

// Fail ends the session as a failure.
func Fail(_ context.Context, in *Interpreter, args []string) error {
	msg := strings.Join(args[1:], " ")
	if msg == "" {
		msg = "failed"
	}
	return in.Session.Fail(msg)
}

// Mkdir creates directories.
func Mkdir(_ context.Context, in *Interpreter, args []string) error {
	opts := getopt.New()
	parents := opts.Bool('p', "make parent directories as needed, no error if existing")
	opts.SetParameters("DIRECTORY...")
	if err := parseOpts(opts, args); err != nil {
		return err
	}
	if opts.NArgs() == 0 {
		return usageError(args)
	}

	for _, dir := range opts.Args() {
		var err error
		if *parents {
			err = in.Session.MkdirTree(dir)
		} else {
			err = in.Session.Mkdir(dir)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Rm removes files and directories.
func Rm(_ context.Context, in *Interpreter, args []string) error {
	opts := getopt.New()
	force := opts.Bool('f', "ignore nonexistent files")
	recursive := opts.Bool('r', "remove directories and their contents recursively")
	opts.SetParameters("FILE...")
	if err := parseOpts(opts, args); err != nil {
		return err
	}
	if opts.NArgs() == 0 && !*force {
		return usageError(args)
	}

	for _, p := range opts.Args() {
		var err error
		switch {
		case *recursive:
			err = in.Session.RmTree(p)
		case *force:
			err = in.Session.RmF(p)
		default:
			err = in.Session.Rm(p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Cp copies files, or trees with -r.
func Cp(_ context.Context, in *Interpreter, args []string) error {
	opts := getopt.New()
	recursive := opts.Bool('r', "copy directories recursively")
	opts.SetParameters("SOURCE DEST")
	if err := parseOpts(opts, args); err != nil {
		return err
	}
	if opts.NArgs() != 2 {
		return usageError(args)
	}

	src, dst := opts.Arg(0), opts.Arg(1)
	if *recursive {
		return in.Session.CpTree(src, dst)
	}
	return in.Session.Cp(src, dst)
}

// Mv moves a file or directory.
func Mv(_ context.Context, in *Interpreter, args []string) error {
	if len(args) != 3 {
		return usageError(args)
	}
	return in.Session.Mv(args[1], args[2])
}

// Cat prints files.
func Cat(_ context.Context, in *Interpreter, args []string) error {
	if len(args) < 2 {
		return usageError(args)
	}
	for _, p := range args[1:] {
		text, err := in.Session.ReadFile(p)
		if err != nil {
			return err
		}
		io.WriteString(in.Stdout(), text)
	}
	return nil
}

// Which prints the path an external command resolves to.
func Which(_ context.Context, in *Interpreter, args []string) error {
	if len(args) < 2 {
		return usageError(args)
	}
	missing := 0
	for _, name := range args[1:] {
		if _, ok := in.builtins[name]; ok {
			fmt.Fprintf(in.Stdout(), "%s: shell builtin\n", name)
			continue
		}
		path, ok := in.Session.Which(name)
		if !ok {
			fmt.Fprintf(in.Stderr(), "%s not found\n", name)
			missing++
			continue
		}
		fmt.Fprintln(in.Stdout(), path)
	}
	if missing > 0 {
		return fmt.Errorf("%s: %d not found", args[0], missing)
	}
	return nil
}

// Trace prints the session's trace log.
func Trace(_ context.Context, in *Interpreter, args []string) error {
	if log := in.Session.TraceLog(); log != "" {
		fmt.Fprintln(in.Stdout(), log)
	}
	return nil
}

// Status prints the result of the last external command.
func Status(_ context.Context, in *Interpreter, args []string) error {
	w := in.Stdout()
	fmt.Fprintf(w, "exit code: %d\n", in.Session.LastExitCode())
	if stderr := in.Session.LastStderr(); stderr != "" {
		fmt.Fprintf(w, "stderr:\n%s\n", stderr)
	}
	return nil
}

// Help lists builtins and modifiers.
func Help(_ context.Context, in *Interpreter, args []string) error {
	w := in.Stdout()
	if len(args) > 1 {
		for _, name := range args[1:] {
			switch {
			case builtinUsage[name] != "":
				fmt.Fprintln(w, builtinUsage[name])
			case modifierHelp[name] != "":
				fmt.Fprintln(w, modifierHelp[name])
			default:
				return fmt.Errorf("%s: no help topics match %q", args[0], name)
			}
		}
		return nil
	}

	fmt.Fprintln(w, "Lines are run one at a time. Anything that isn't a builtin runs as a")
	fmt.Fprintln(w, "command; a lone | sends one command's output to the next.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins:")
	for _, b := range ListBuiltins() {
		fmt.Fprintf(w, "  %s\n", b.Usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Modifiers:")
	for _, name := range modifierNames {
		fmt.Fprintf(w, "  %s\n", modifierHelp[name])
	}
	return nil
}

func init() {
	register("cd", "cd [DIR]", Cd)
	register("pwd", "pwd", Pwd)
	register("export", "export [NAME=VALUE...]", Export)
	register("unset", "unset NAME...", Unset)
	register("set", "set [-e|+e] [-x|+x] [-v|+v] [-t|+t] [-s|+s]", Set)
	register("echo", "echo [-n] [ARG...]", Echo)
	register("sleep", "sleep DURATION", Sleep)
	register("exit", "exit [N]", Exit)
	register("quiet-exit", "quiet-exit [N]", QuietExit)
	register("fail", "fail [MESSAGE...]", Fail)
	register("mkdir", "mkdir [-p] DIR...", Mkdir)
	register("rm", "rm [-f] [-r] PATH...", Rm)
	register("cp", "cp [-r] SOURCE DEST", Cp)
	register("mv", "mv SOURCE DEST", Mv)
	register("cat", "cat FILE...", Cat)
	register("which", "which NAME...", Which)
	register("trace", "trace", Trace)
	register("status", "status", Status)
	register("help", "help [NAME...]", Help)
}
