// Package sse implements an incremental decoder for text/event-stream
// responses. Frames are blank-line delimited; the decoder buffers partial
// transport chunks and only yields complete frames, so an event split across
// two reads is reassembled rather than dropped.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// Event is one decoded server-sent event.
type Event struct {
	Name string
	Data string
}

type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next complete event. It returns io.EOF at a clean end of
// stream and io.ErrUnexpectedEOF when the connection closes mid-frame; the
// caller must treat either before a terminal event as a failure.
func (d *Decoder) Next() (Event, error) {
	var ev Event
	var dataLines []string
	inFrame := false

	for {
		line, err := d.r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				if !inFrame && strings.TrimSpace(line) == "" {
					return Event{}, io.EOF
				}
				return Event{}, io.ErrUnexpectedEOF
			}
			return Event{}, err
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		if line == "" {
			if !inFrame {
				continue
			}
			ev.Data = strings.Join(dataLines, "\n")
			return ev, nil
		}

		switch {
		case strings.HasPrefix(line, ":"):
			// comment, keep-alive
			continue
		case strings.HasPrefix(line, "event:"):
			ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			v := strings.TrimPrefix(line, "data:")
			v = strings.TrimPrefix(v, " ")
			dataLines = append(dataLines, v)
		default:
			// id:/retry:/unknown fields are not used by this stream
		}
		inFrame = true
	}
}
