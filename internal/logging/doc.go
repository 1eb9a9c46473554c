// Package logging assembles the structured slog loggers used across hyprwatch.
//
// It owns the console and JSON handlers, level parsing and output plumbing,
// and the standard attribute keys (component, event_type, error_hint, impact)
// so every package emits log lines of the same shape. NewNop provides a
// discarding logger for tests and for wiring code that accepts a nil logger.
package logging
