package session

import (
	"context"
	"fmt"
	"path/filepath"
)

// Command accumulates an invocation one argument at a time.
//
//	out, err := session.Cmd("git").Arg("log").Argf("-n%d", 5).Path(dir).Run(ctx, s)
type Command struct {
	inv Invocation
}

// Cmd starts building an invocation of path.
func Cmd(path string) *Command {
	return &Command{inv: Invocation{Path: path}}
}

// Arg appends arguments verbatim.
func (c *Command) Arg(args ...string) *Command {
	c.inv.Args = append(c.inv.Args, args...)
	return c
}

// Args appends a list of arguments verbatim.
func (c *Command) Args(args []string) *Command {
	return c.Arg(args...)
}

// Argf appends a formatted argument.
func (c *Command) Argf(format string, a ...interface{}) *Command {
	return c.Arg(fmt.Sprintf(format, a...))
}

// Path appends filesystem paths in their cleaned, OS specific form.
func (c *Command) Path(paths ...string) *Command {
	for _, p := range paths {
		c.inv.Args = append(c.inv.Args, filepath.Clean(filepath.FromSlash(p)))
	}
	return c
}

// Stdin feeds text to the command instead of the session's pending stdin.
func (c *Command) Stdin(text string) *Command {
	c.inv.Stdin = &text
	return c
}

// Invocation returns the assembled invocation, use it with RunFold.
func (c *Command) Invocation() Invocation {
	inv := c.inv
	inv.Args = append([]string(nil), c.inv.Args...)
	return inv
}

// String renders the command the way it's echoed.
func (c *Command) String() string {
	return c.inv.String()
}

// Run runs the command in s and returns its stdout.
func (c *Command) Run(ctx context.Context, s *Session) (string, error) {
	return s.RunCommand(ctx, c.Invocation())
}

// RunLines runs the command in s and returns its stdout lines.
func (c *Command) RunLines(ctx context.Context, s *Session) ([]string, error) {
	return RunFold(ctx, s, c.Invocation(), []string(nil), func(acc []string, line string) []string {
		return append(acc, line)
	})
}

// RunQuiet runs the command in s and discards its stdout.
func (c *Command) RunQuiet(ctx context.Context, s *Session) error {
	_, err := RunFold(ctx, s, c.Invocation(), struct{}{}, func(acc struct{}, _ string) struct{} {
		return acc
	})
	return err
}
