package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (e.g. "watch_started").
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldSignal names the signal being dispatched.
	FieldSignal = "signal"
	// FieldEvent names the compositor event a line refers to.
	FieldEvent = "event"
	// FieldSocket is the socket path involved in an operation.
	FieldSocket = "socket"
	// FieldSessionID correlates every line emitted by one watch session.
	FieldSessionID = "session_id"
	// FieldInstance is the compositor instance signature.
	FieldInstance = "instance"
)
