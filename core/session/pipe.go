package session

import (
	"context"
	"errors"
)

// Pipe runs a with its output hidden, then runs b with a's stdout as its
// stdin. b doesn't start until a has exited and been fully drained. It
// returns b's stdout.
func (s *Session) Pipe(ctx context.Context, a, b Invocation) (string, error) {
	return s.Pipeline(ctx, a, b)
}

// Pipeline chains invocations the way Pipe does, one after another.
func (s *Session) Pipeline(ctx context.Context, invs ...Invocation) (string, error) {
	if len(invs) == 0 {
		return "", errors.New("empty pipeline")
	}

	last := len(invs) - 1
	for _, inv := range invs[:last] {
		var out string
		err := s.PrintStdout(false, func() error {
			var err error
			out, err = s.RunCommand(ctx, inv)
			return err
		})
		if err != nil {
			return "", err
		}
		s.SetStdin(out)
	}
	return s.RunCommand(ctx, invs[last])
}
