// Package script interprets line oriented scripts against a session.
//
// Each line is one command. Words are split like a POSIX shell would split
// them, $VAR references outside single quotes are expanded from the session
// environment and everything after an unquoted # is ignored. Expanded values
// are never split again. An unquoted lone | chains commands, the output of
// one becomes the input of the next. Lines may start with
// modifiers that scope the rest of the line:
//
//	in DIR      run in DIR, then return
//	silently    don't echo commands or output
//	verbosely   echo commands and output
//	noerr       don't fail on a non-zero exit
//	unescaped   pass the command line through the shell
//	sub         run in a sub-session
//
// Anything that isn't a builtin is run as an external command.
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/sesh/core/session"
)

const pipeToken = "|"

// ErrSyntax is returned for lines that can't be split into words.
var ErrSyntax = errors.New("syntax error")

// Interpreter runs script lines in a session.
type Interpreter struct {
	Session  *session.Session
	builtins map[string]Builtin
}

// New creates an interpreter with every registered builtin.
func New(s *session.Session) *Interpreter {
	builtins := make(map[string]Builtin, len(AllBuiltins))
	for name, b := range AllBuiltins {
		builtins[name] = b
	}
	return &Interpreter{Session: s, builtins: builtins}
}

// Stdout is where builtins write their output.
func (in *Interpreter) Stdout() io.Writer {
	return in.Session.IO().Stdout()
}

// Stderr is where builtins write their diagnostics.
func (in *Interpreter) Stderr() io.Writer {
	return in.Session.IO().Stderr()
}

// RunScript runs every line of r, stopping at the first error. name is used
// to say where the error happened.
func (in *Interpreter) RunScript(ctx context.Context, name string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	var pending strings.Builder
	start := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if pending.Len() == 0 {
			start = lineNo
		}

		// A trailing backslash joins the next line.
		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			pending.WriteByte(' ')
			continue
		}
		pending.WriteString(line)

		text := pending.String()
		pending.Reset()
		if err := in.RunLine(ctx, text); err != nil {
			return session.WithContext(err, "%s:%d", name, start)
		}
	}
	if err := scanner.Err(); err != nil {
		return session.WithContext(err, "reading %s", name)
	}
	if pending.Len() > 0 {
		if err := in.RunLine(ctx, pending.String()); err != nil {
			return session.WithContext(err, "%s:%d", name, start)
		}
	}
	return nil
}

// RunLine runs a single line.
func (in *Interpreter) RunLine(ctx context.Context, line string) error {
	cmds, err := in.Split(line)
	if err != nil {
		return err
	}
	if len(cmds) == 0 {
		return nil
	}
	return in.run(ctx, cmds)
}

// Split turns a line into the expanded words of each command in its
// pipeline. A blank line has no commands.
func (in *Interpreter) Split(line string) ([][]string, error) {
	line = strings.TrimSpace(stripComment(line))
	if line == "" {
		return nil, nil
	}

	words, err := shlex.Split(protectLiterals(line), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	cmds := [][]string{nil}
	for _, word := range words {
		if word == pipeToken {
			cmds = append(cmds, nil)
			continue
		}
		last := len(cmds) - 1
		cmds[last] = append(cmds[last], restoreLiterals.Replace(in.Session.ExpandEnv(word)))
	}
	return cmds, nil
}

func (in *Interpreter) run(ctx context.Context, cmds [][]string) error {
	words := cmds[0]
	if len(words) == 0 {
		return fmt.Errorf("%w: missing command", ErrSyntax)
	}

	if scope, ok := in.modifier(words[0], words[1:]); ok {
		return scope(func() error {
			rest := append([][]string{words[modifierArity(words[0])+1:]}, cmds[1:]...)
			return in.run(ctx, rest)
		})
	}

	if len(cmds) == 1 {
		return in.runSimple(ctx, words)
	}

	var invs []session.Invocation
	for _, cmd := range cmds {
		if len(cmd) == 0 {
			return fmt.Errorf("%w: empty command in pipeline", ErrSyntax)
		}
		if _, ok := in.builtins[cmd[0]]; ok {
			return fmt.Errorf("%s: builtins can't be piped", cmd[0])
		}
		invs = append(invs, session.Invocation{Path: cmd[0], Args: cmd[1:]})
	}
	_, err := in.Session.Pipeline(ctx, invs...)
	return err
}

func (in *Interpreter) runSimple(ctx context.Context, words []string) error {
	if b, ok := in.builtins[words[0]]; ok {
		return b.Main(ctx, in, words)
	}
	return in.Session.RunDiscard(ctx, words[0], words[1:]...)
}

// Quoted or escaped characters that must survive splitting as plain text
// are swapped for private use runes until the words have been expanded.
const (
	literalDollar = '\uE024'
	literalPipe   = '\uE07C'
)

var restoreLiterals = strings.NewReplacer(string(literalDollar), "$", string(literalPipe), "|")

// protectLiterals hides quoted or escaped | from pipeline splitting, and $
// in single quotes or after a backslash from expansion.
func protectLiterals(line string) string {
	var b strings.Builder
	var quote rune
	escaped := false
	for _, r := range line {
		if escaped {
			escaped = false
			switch r {
			case '$':
				b.WriteRune(literalDollar)
			case '|':
				b.WriteRune(literalPipe)
			default:
				b.WriteRune('\\')
				b.WriteRune(r)
			}
			continue
		}

		switch {
		case r == '\\' && quote != '\'':
			escaped = true
			continue
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
		case quote != 0 && r == '|':
			r = literalPipe
		case quote == '\'' && r == '$':
			r = literalDollar
		}
		b.WriteRune(r)
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String()
}

// stripComment removes a # and everything after it unless it's quoted or
// part of a word.
func stripComment(line string) string {
	var quote rune
	escaped := false
	prev := ' '
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '#' && (prev == ' ' || prev == '\t'):
			return line[:i]
		}
		prev = r
	}
	return line
}
