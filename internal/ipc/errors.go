package ipc

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// maxErrorFrame bounds how much of a frame a ParseError message quotes.
const maxErrorFrame = 120

var (
	// ErrEnvironment reports that the compositor endpoint could not be derived
	// from the process environment.
	ErrEnvironment = errors.New("hyprland environment unavailable")
	// ErrConnection reports a missing socket path or a refused connection.
	ErrConnection = errors.New("hyprland socket unreachable")
	// ErrTimeout reports that the compositor did not answer within the
	// configured bound.
	ErrTimeout = errors.New("hyprland socket timed out")
	// ErrConnectionClosed reports that the peer closed or reset a connection
	// mid-stream. It is terminal for the channel that returned it.
	ErrConnectionClosed = errors.New("hyprland socket closed")
)

// ParseError describes a single event frame that could not be decoded.
// It is never returned to watch callers; the frame is dropped and the stream
// continues.
type ParseError struct {
	Frame  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	frame := e.Frame
	if len(frame) > maxErrorFrame {
		cut := maxErrorFrame - 3
		for cut > 0 && !utf8.RuneStart(frame[cut]) {
			cut--
		}
		frame = frame[:cut] + "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("parse event frame %q: %s: %v", frame, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse event frame %q: %s", frame, e.Reason)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
