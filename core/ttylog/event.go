package ttylog

import (
	"io"
	"sync"
	"time"
)

// FD identifies the stream an event happened on.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

func (fd FD) String() string {
	switch fd {
	case FDStdin:
		return "stdin"
	case FDStdout:
		return "stdout"
	case FDStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Event is a chunk of data passing through one of the session's streams.
type Event struct {
	TimestampMicros int64
	FD              FD
	Data            []byte
}

// Time returns the time the event happened.
func (e *Event) Time() time.Time {
	return time.UnixMicro(e.TimestampMicros)
}

// LogSink receives events.
type LogSink func(e *Event) error

// LogSource produces events.
type LogSource interface {
	// Next fetches the next event. It returns io.EOF if the source has no
	// more events.
	Next() (*Event, error)
}

// NewRealTimePlayback paces events so they're delivered with the delays
// they were recorded with. If maxSleep > 0 no single pause is longer than
// it.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Event) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		sleepDuration := time.Duration(delta) * time.Microsecond
		if maxSleep > 0 && sleepDuration > maxSleep {
			sleepDuration = maxSleep
		}
		if sleepDuration > 0 {
			time.Sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewClientOutput writes everything the session displayed to w.
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Event) error {
		if e.FD == FDStdin {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay feeds every event from recording to callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}
