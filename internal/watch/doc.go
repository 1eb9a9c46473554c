// Package watch runs the event loop: it polls the compositor's event socket,
// decodes frames, interprets their fields and dispatches them on a signal
// bus, all on one goroutine.
//
// A Loop moves Idle → Connected → Polling ⇄ Dispatching and ends in Stopped
// after Stop or cancellation, or in Errored when the socket is lost. Loops
// never reconnect; callers build a new one.
package watch
