// Package sse renders server-sent events.
package sse

import (
	"strconv"
	"strings"
	"time"
)

// Event is a single server-sent event. Empty ID and Name, as well as zero Retry, are
// omitted from the output.
type Event struct {
	ID    string
	Name  string
	Retry time.Duration
	Data  string
}

func New(data string) Event {
	return Event{Data: data}
}

func (e Event) WithID(id string) Event {
	e.ID = id
	return e
}

func (e Event) WithName(name string) Event {
	e.Name = name
	return e
}

func (e Event) WithRetry(retry time.Duration) Event {
	e.Retry = retry
	return e
}

// AppendTo renders the event into dst. Every line of the data becomes a separate data
// field, and the event is terminated by an empty line.
func (e Event) AppendTo(dst []byte) []byte {
	if len(e.ID) > 0 {
		dst = appendField(dst, "id", e.ID)
	}

	if len(e.Name) > 0 {
		dst = appendField(dst, "event", e.Name)
	}

	if e.Retry > 0 {
		dst = append(dst, "retry: "...)
		dst = strconv.AppendInt(dst, e.Retry.Milliseconds(), 10)
		dst = append(dst, '\n')
	}

	data := strings.ReplaceAll(e.Data, "\r\n", "\n")
	for len(data) > 0 {
		line, rest, _ := strings.Cut(data, "\n")
		dst = appendField(dst, "data", line)
		data = rest
	}

	return append(dst, '\n')
}

func (e Event) String() string {
	return string(e.AppendTo(nil))
}

func appendField(dst []byte, name, value string) []byte {
	dst = append(dst, name...)
	dst = append(dst, ": "...)
	dst = append(dst, value...)
	return append(dst, '\n')
}
