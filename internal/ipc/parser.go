package ipc

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	// NameSeparator splits the event name from its payload.
	NameSeparator = ">>"
	// FieldSeparator splits the payload into fields.
	FieldSeparator = ","

	frameTerminator = '\n'

	// MaxFrameBytes bounds a single frame. Anything longer without a newline is
	// dropped up to the next terminator.
	MaxFrameBytes = 1 << 20
)

// RawEvent is one decoded frame: an event name and its untyped fields in wire
// order.
type RawEvent struct {
	Name   string
	Fields []string
}

// Payload rejoins the fields into the original payload string. Interpreters
// use it for events whose last field may itself contain commas.
func (e RawEvent) Payload() string {
	return strings.Join(e.Fields, FieldSeparator)
}

func (e RawEvent) String() string {
	return e.Name + NameSeparator + e.Payload()
}

// LineParser turns stream bytes into RawEvents. Incomplete trailing data is
// kept for the next Feed call. Not safe for concurrent use.
type LineParser struct {
	pending    []byte
	discarding bool
	onError    func(*ParseError)
}

// NewLineParser returns a parser that reports malformed frames to onError.
// onError may be nil.
func NewLineParser(onError func(*ParseError)) *LineParser {
	return &LineParser{onError: onError}
}

// Feed appends data and returns every complete frame decoded so far, in
// stream order. Malformed frames are reported and skipped.
func (p *LineParser) Feed(data []byte) []RawEvent {
	if len(data) == 0 {
		return nil
	}
	if p.discarding {
		idx := bytes.IndexByte(data, frameTerminator)
		if idx < 0 {
			return nil
		}
		p.discarding = false
		data = data[idx+1:]
	}
	p.pending = append(p.pending, data...)

	var events []RawEvent
	consumed := 0
	for {
		idx := bytes.IndexByte(p.pending[consumed:], frameTerminator)
		if idx < 0 {
			break
		}
		frame := p.pending[consumed : consumed+idx]
		consumed += idx + 1

		event, err := ParseFrame(frame)
		if err != nil {
			p.report(err)
			continue
		}
		if event.Name == "" {
			continue
		}
		events = append(events, event)
	}

	rest := p.pending[consumed:]
	if len(rest) > MaxFrameBytes {
		p.report(&ParseError{
			Frame:  string(rest[:64]),
			Reason: fmt.Sprintf("frame exceeds %d bytes without terminator", MaxFrameBytes),
		})
		p.discarding = true
		rest = nil
	}
	switch {
	case len(rest) == 0:
		p.pending = p.pending[:0]
	case consumed > 0:
		p.pending = append(make([]byte, 0, len(rest)), rest...)
	}
	return events
}

// Pending reports how many bytes of an incomplete frame are buffered.
func (p *LineParser) Pending() int {
	return len(p.pending)
}

// Reset drops any buffered partial frame.
func (p *LineParser) Reset() {
	p.pending = nil
	p.discarding = false
}

func (p *LineParser) report(err error) {
	if p.onError == nil {
		return
	}
	if perr, ok := err.(*ParseError); ok {
		p.onError(perr)
		return
	}
	p.onError(&ParseError{Reason: "unexpected", Err: err})
}

// ParseFrame decodes a single frame without its terminator. An empty frame
// yields a zero RawEvent and no error.
func ParseFrame(frame []byte) (RawEvent, error) {
	line := strings.TrimSuffix(string(frame), "\r")
	if strings.TrimSpace(line) == "" {
		return RawEvent{}, nil
	}
	name, payload, ok := strings.Cut(line, NameSeparator)
	if !ok {
		return RawEvent{}, &ParseError{Frame: line, Reason: "missing " + NameSeparator + " separator"}
	}
	if name == "" {
		return RawEvent{}, &ParseError{Frame: line, Reason: "empty event name"}
	}
	if strings.ContainsAny(name, " \t") {
		return RawEvent{}, &ParseError{Frame: line, Reason: "event name contains whitespace"}
	}

	var fields []string
	if payload != "" {
		fields = strings.Split(payload, FieldSeparator)
	}
	return RawEvent{Name: name, Fields: fields}, nil
}
