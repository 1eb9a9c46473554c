// Package ipc speaks Hyprland's private unix-socket protocol.
//
// It owns endpoint discovery, the short-lived command channel (one connection
// per request, reply terminated by the compositor closing the socket), the
// long-lived event channel with its poll-based readiness wait, and the line
// parser that turns the event stream into RawEvent values.
//
// The package is transport only. It never interprets event fields or command
// replies; higher layers (events, models, hyprland) do that. Errors are
// reported through the sentinel values in errors.go so callers can branch with
// errors.Is regardless of the underlying syscall failure.
package ipc
