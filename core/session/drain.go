package session

import (
	"bufio"
	"io"
	"strings"
)

// drainResult is what a drain worker hands back over its rendezvous
// channel.
type drainResult[T any] struct {
	acc      T
	panicked interface{}
}

// drainer consumes both output streams of one child.
type drainer struct {
	// echoStdout mirrors stdout lines to stdout as they're read. Stderr
	// lines are always mirrored to stderr.
	echoStdout bool
	stdout     io.Writer
	stderr     io.Writer
	// abort is called from a worker whose fold panicked so the child stops
	// producing output nobody will read.
	abort func()
}

// drain reads out and errs to EOF concurrently. Lines from out are folded
// into init in order, lines from errs are joined with newlines. Read errors
// end a stream the same way EOF does. If fold panics the panic is returned
// after both streams are finished so the caller can re-raise it.
func drain[T any](d drainer, out, errs io.Reader, init T, fold func(T, string) T) (T, string, interface{}) {
	outDone := make(chan drainResult[T], 1)
	errDone := make(chan drainResult[string], 1)

	go func() {
		outDone <- drainStream(d, out, d.stdout, d.echoStdout, init, fold)
	}()
	go func() {
		var lines []string
		res := drainStream(d, errs, d.stderr, true, lines, func(acc []string, line string) []string {
			return append(acc, line)
		})
		errDone <- drainResult[string]{acc: strings.Join(res.acc, "\n"), panicked: res.panicked}
	}()

	outRes := <-outDone
	errRes := <-errDone

	panicked := outRes.panicked
	if panicked == nil {
		panicked = errRes.panicked
	}
	return outRes.acc, errRes.acc, panicked
}

func drainStream[T any](d drainer, r io.Reader, echo io.Writer, doEcho bool, acc T, fold func(T, string) T) (res drainResult[T]) {
	res.acc = acc

	defer func() {
		if p := recover(); p != nil {
			res.panicked = p
			if d.abort != nil {
				d.abort()
			}
			io.Copy(io.Discard, r)
		}
	}()

	br := bufio.NewReader(NewLenientReader(r))
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if doEcho && echo != nil {
				io.WriteString(echo, line+"\n")
			}
			res.acc = fold(res.acc, line)
		}
		if err != nil {
			return res
		}
	}
}
