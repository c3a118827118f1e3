// Package sse implements a decoder for chunked server-sent-event
// streams: full double-newline record parsing with multi-line data:
// records, event:/id: fields, and the [DONE] sentinel.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// maxScanTokenSize bounds a single SSE line; one generateContent chunk
// can be large for image/audio parts.
const maxScanTokenSize = 5 * 1024 * 1024

// Event is one decoded SSE record.
type Event struct {
	Type string
	Data string
	ID   string
}

// Done reports whether this event is the [DONE] sentinel record.
func (e Event) Done() bool {
	return e.Data == "[DONE]"
}

// Reader splits a byte stream into Events on the blank-line record
// separator mandated by the SSE wire format.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r for line-oriented SSE record scanning.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanTokenSize)
	return &Reader{scanner: scanner}
}

// Next reads the next record. It returns ok=false with a nil error when
// the stream is exhausted cleanly.
func (r *Reader) Next() (ev Event, ok bool, err error) {
	var dataLines []string
	sawAny := false

	for r.scanner.Scan() {
		line := r.scanner.Text()

		if line == "" {
			if sawAny {
				ev.Data = strings.Join(dataLines, "\n")
				return ev, true, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			// comment line, ignored per the SSE spec
			continue
		}

		sawAny = true
		switch {
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case strings.HasPrefix(line, "event:"):
			ev.Type = strings.TrimPrefix(strings.TrimPrefix(line, "event:"), " ")
		case strings.HasPrefix(line, "id:"):
			ev.ID = strings.TrimPrefix(strings.TrimPrefix(line, "id:"), " ")
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, false, err
	}
	if sawAny {
		ev.Data = strings.Join(dataLines, "\n")
		return ev, true, nil
	}
	return Event{}, false, nil
}
