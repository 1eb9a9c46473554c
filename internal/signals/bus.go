package signals

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"hyprwatch/internal/logging"
)

// Wildcard subscribes a handler to every event name.
const Wildcard = "*"

// Data carries the interpreted fields of one event, keyed by field name.
// Every handler of a dispatch receives the same map; handlers must not
// mutate it.
type Data map[string]any

// Handler reacts to one event. A returned error is logged and counted; it
// never stops delivery to the remaining handlers.
type Handler func(name string, data Data) error

// Subscription identifies one registration. Registering the same function
// twice yields two distinct subscriptions.
type Subscription struct {
	ID   uuid.UUID
	Name string
}

// Valid reports whether the subscription came from a successful Connect.
func (s Subscription) Valid() bool {
	return s.ID != uuid.Nil
}

// Recorder observes dispatches and handler failures. The metrics package
// provides the Prometheus implementation.
type Recorder interface {
	RecordDispatch(name string, handlers int)
	RecordHandlerFailure(name, reason string)
}

type entry struct {
	id   uuid.UUID
	name string
	fn   Handler
}

// Bus routes named events to ordered handler lists. Handlers run
// synchronously on the dispatching goroutine, in registration order.
// Connect and Disconnect may be called from any goroutine, including from
// inside a handler.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]entry
	logger   *slog.Logger
	recorder Recorder
}

// Option customizes a Bus.
type Option func(*Bus)

// WithLogger attaches a logger used for handler failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logging.NewComponentLogger(logger, "signals")
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(b *Bus) {
		b.recorder = recorder
	}
}

// NewBus returns an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[string][]entry),
		logger:   logging.NewComponentLogger(nil, "signals"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Connect appends fn to the handlers of name. An empty name or nil fn
// registers nothing and returns an invalid Subscription.
func (b *Bus) Connect(name string, fn Handler) Subscription {
	if name == "" || fn == nil {
		return Subscription{}
	}
	sub := Subscription{ID: uuid.New(), Name: name}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], entry{id: sub.ID, name: name, fn: fn})
	return sub
}

// Disconnect removes the registration. It reports false for unknown or
// already removed subscriptions, which are otherwise ignored.
func (b *Bus) Disconnect(sub Subscription) bool {
	if !sub.Valid() {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.handlers[sub.Name]
	idx := slices.IndexFunc(list, func(e entry) bool { return e.id == sub.ID })
	if idx < 0 {
		return false
	}
	updated := slices.Delete(slices.Clone(list), idx, idx+1)
	if len(updated) == 0 {
		delete(b.handlers, sub.Name)
	} else {
		b.handlers[sub.Name] = updated
	}
	return true
}

// Dispatch invokes every handler registered for name, then every wildcard
// handler, and returns how many ran. Handlers connected during the dispatch
// are not invoked by it; handlers disconnected during it are skipped.
func (b *Bus) Dispatch(name string, data Data) int {
	targets := b.snapshot(name)
	if len(targets) == 0 {
		return 0
	}

	invoked := 0
	for _, target := range targets {
		if !b.registered(target) {
			continue
		}
		invoked++
		b.invoke(target.fn, name, data)
	}
	if b.recorder != nil {
		b.recorder.RecordDispatch(name, invoked)
	}
	return invoked
}

// HasSubscribers reports whether a dispatch of name would reach any handler.
func (b *Bus) HasSubscribers(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name]) > 0 || len(b.handlers[Wildcard]) > 0
}

// Count returns the number of handlers registered for exactly name.
func (b *Bus) Count(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

// Names returns the sorted names that have at least one handler.
func (b *Bus) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (b *Bus) snapshot(name string) []entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	direct := b.handlers[name]
	var wild []entry
	if name != Wildcard {
		wild = b.handlers[Wildcard]
	}
	if len(direct)+len(wild) == 0 {
		return nil
	}
	out := make([]entry, 0, len(direct)+len(wild))
	out = append(out, direct...)
	return append(out, wild...)
}

func (b *Bus) registered(target entry) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.ContainsFunc(b.handlers[target.name], func(e entry) bool { return e.id == target.id })
}

func (b *Bus) invoke(fn Handler, name string, data Data) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(name, "panic", fmt.Errorf("handler panic: %v", r))
		}
	}()
	if err := fn(name, data); err != nil {
		b.fail(name, "error", err)
	}
}

func (b *Bus) fail(name, reason string, err error) {
	if b.recorder != nil {
		b.recorder.RecordHandlerFailure(name, reason)
	}
	logging.WarnWithContext(b.logger, "signal handler failed", "signal_handler_failed",
		logging.String(logging.FieldSignal, name),
		logging.String("reason", reason),
		logging.Error(err),
		logging.String(logging.FieldImpact, "remaining handlers still ran"),
		logging.String(logging.FieldErrorHint, "fix or disconnect the failing handler"))
}
