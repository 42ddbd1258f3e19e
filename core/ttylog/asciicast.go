package ttylog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sync"
	"time"
)

// AsciicastFileExt holds the suggested file extension for asciicast files.
const AsciicastFileExt = "cast"

var crlf = regexp.MustCompile(`\r?\n`)

// Header describes a recording.
type Header struct {
	Version   int               `json:"version"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Timestamp int64             `json:"timestamp,omitempty"`
	Title     string            `json:"title,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// DefaultHeader returns settings that display most sessions well.
func DefaultHeader(title, shell string) Header {
	return Header{
		Version: 2,
		Width:   80,
		Height:  24,
		Title:   title,
		Env: map[string]string{
			"TERM":  "xterm-256color",
			"SHELL": shell,
		},
	}
}

func writeJSONLine(w io.Writer, structure interface{}) error {
	line, err := json.Marshal(structure)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", line)
	return err
}

// NewAsciicastLogSink creates a LogSink that writes the asciicast v2
// format. The header is written with the first event and takes its
// timestamp from it.
//
// Asciicast has no stderr, so it's merged into stdout. Bare newlines in
// output become CRLF so playback in a raw terminal doesn't drift.
//
// See: https://github.com/asciinema/asciinema/blob/develop/doc/asciicast-v2.md
func NewAsciicastLogSink(w io.Writer, header Header) LogSink {
	var (
		firstLogTimeMicros int64
		once               sync.Once
	)

	return func(e *Event) error {
		var headerErr error
		once.Do(func() {
			firstLogTimeMicros = e.TimestampMicros
			header.Timestamp = time.UnixMicro(firstLogTimeMicros).Unix()
			headerErr = writeJSONLine(w, header)
		})
		if headerErr != nil {
			return headerErr
		}

		deltaSeconds := microsecondsToSeconds(e.TimestampMicros - firstLogTimeMicros)

		switch e.FD {
		case FDStdin:
			return writeJSONLine(w, &asciicastLogLine{deltaSeconds, "i", string(e.Data)})
		case FDStdout, FDStderr:
			data := crlf.ReplaceAll(e.Data, []byte("\r\n"))
			return writeJSONLine(w, &asciicastLogLine{deltaSeconds, "o", string(data)})
		default:
			return fmt.Errorf("unknown stream: %v", e.FD)
		}
	}
}

// AsciicastLogSource reads events from an asciicast v2 recording.
type AsciicastLogSource struct {
	r         *bufio.Reader
	header    *Header
	headerErr error
	once      sync.Once
}

var _ LogSource = (*AsciicastLogSource)(nil)

// NewAsciicastLogSource reads log events from an asciicast formatted file.
func NewAsciicastLogSource(r io.Reader) *AsciicastLogSource {
	return &AsciicastLogSource{r: bufio.NewReader(r)}
}

func (src *AsciicastLogSource) readHeader() {
	src.once.Do(func() {
		line, err := src.r.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			src.headerErr = err
			return
		}
		var h Header
		if err := json.Unmarshal(line, &h); err != nil {
			src.headerErr = fmt.Errorf("malformed header: %w", err)
			return
		}
		if h.Version != 2 {
			src.headerErr = fmt.Errorf("unsupported asciicast version %d", h.Version)
			return
		}
		src.header = &h
	})
}

// Header returns the recording's header.
func (src *AsciicastLogSource) Header() (*Header, error) {
	src.readHeader()
	return src.header, src.headerErr
}

// Next gets the next event, it returns io.EOF if there are no more.
func (src *AsciicastLogSource) Next() (*Event, error) {
	if _, err := src.Header(); err != nil {
		return nil, err
	}

	for {
		line, err := src.r.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			return nil, err
		}

		if len(line) == 1 {
			// Skip blank lines
			continue
		}

		var asciicastLine asciicastLogLine
		if err := json.Unmarshal(line, &asciicastLine); err != nil {
			return nil, err
		}

		var fd FD
		switch asciicastLine.EventType {
		case "o":
			fd = FDStdout
		case "i":
			fd = FDStdin
		default:
			// Markers and resizes don't affect what's displayed.
			continue
		}

		return &Event{
			TimestampMicros: secondsToMicroseconds(asciicastLine.TimeSeconds),
			FD:              fd,
			Data:            []byte(asciicastLine.EventData),
		}, nil
	}
}

type asciicastLogLine struct {
	TimeSeconds float64
	EventType   string
	EventData   string
}

func (l *asciicastLogLine) UnmarshalJSON(data []byte) error {
	var v []interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if count := len(v); count != 3 {
		return fmt.Errorf("malformed line, expected 3 entries got %d", count)
	}

	var timeOk, typeOk, dataOk bool
	l.TimeSeconds, timeOk = v[0].(float64)
	l.EventType, typeOk = v[1].(string)
	l.EventData, dataOk = v[2].(string)

	if !timeOk || !typeOk || !dataOk {
		return fmt.Errorf("malformed data in line: %q", v)
	}

	return nil
}

func (l *asciicastLogLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{l.TimeSeconds, l.EventType, l.EventData})
}

func microsecondsToSeconds(microseconds int64) (seconds float64) {
	return (float64(microseconds) * float64(time.Microsecond)) / float64(time.Second)
}

func secondsToMicroseconds(seconds float64) (microseconds int64) {
	return int64(seconds*float64(time.Second)) / int64(time.Microsecond)
}
