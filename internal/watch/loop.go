package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"hyprwatch/internal/events"
	"hyprwatch/internal/ipc"
	"hyprwatch/internal/logging"
	"hyprwatch/internal/signals"
)

const (
	// DefaultPollInterval bounds how long Stop and ctx cancellation can go
	// unnoticed.
	DefaultPollInterval = 250 * time.Millisecond
	// DefaultParseWarningsPerSecond limits parse-error warnings.
	DefaultParseWarningsPerSecond = 1.0

	parseWarningBurst = 3
)

// Channel is the event stream the loop reads. *ipc.EventChannel implements it.
type Channel interface {
	Connect(ctx context.Context) error
	Poll(timeout time.Duration) (bool, error)
	ReadAvailable() ([]byte, error)
	Close() error
}

// Dispatcher delivers interpreted events. *signals.Bus implements it.
type Dispatcher interface {
	Dispatch(name string, data signals.Data) int
	HasSubscribers(name string) bool
}

// Interpreter turns raw fields into named values. *events.Catalog
// implements it.
type Interpreter interface {
	Interpret(ev ipc.RawEvent) (signals.Data, error)
}

// Recorder observes loop activity. The metrics package provides the
// Prometheus implementation.
type Recorder interface {
	RecordEvent(name string)
	RecordParseError()
	RecordLoopState(state string)
}

// Options tunes a Loop. Zero values select the defaults.
type Options struct {
	PollInterval           time.Duration
	ParseWarningsPerSecond float64
	Logger                 *slog.Logger
	Recorder               Recorder
	// OnFrame sees every decoded frame before interpretation, whether or
	// not anything is subscribed to it.
	OnFrame func(ev ipc.RawEvent)
}

// Loop reads the event channel, parses frames and dispatches them on the bus.
// Run, the parser and every handler execute on the caller's goroutine. Only
// Stop and State may be called from elsewhere.
type Loop struct {
	channel     Channel
	bus         Dispatcher
	interpreter Interpreter
	parser      *ipc.LineParser

	pollInterval time.Duration
	recorder     Recorder
	onFrame      func(ipc.RawEvent)
	logger       *slog.Logger
	sessionID    string

	limiter    *rate.Limiter
	suppressed int

	state atomic.Int32
	stop  atomic.Bool
}

// New builds an idle loop. A nil interpreter selects the full event catalog.
func New(channel Channel, bus Dispatcher, interpreter Interpreter, opts Options) (*Loop, error) {
	if channel == nil {
		return nil, errors.New("watch loop requires an event channel")
	}
	if bus == nil {
		return nil, errors.New("watch loop requires a dispatcher")
	}
	if interpreter == nil {
		interpreter = events.NewCatalog()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	perSecond := opts.ParseWarningsPerSecond
	if perSecond <= 0 {
		perSecond = DefaultParseWarningsPerSecond
	}

	sessionID := uuid.NewString()
	l := &Loop{
		channel:      channel,
		bus:          bus,
		interpreter:  interpreter,
		pollInterval: interval,
		recorder:     opts.Recorder,
		onFrame:      opts.OnFrame,
		sessionID:    sessionID,
		limiter:      rate.NewLimiter(rate.Limit(perSecond), parseWarningBurst),
		logger: logging.NewComponentLogger(opts.Logger, "watch").With(
			logging.String(logging.FieldSessionID, sessionID),
		),
	}
	l.parser = ipc.NewLineParser(l.reportParseError)
	return l, nil
}

// SessionID identifies this loop in log records.
func (l *Loop) SessionID() string {
	return l.sessionID
}

// State returns the current run state. Safe for concurrent use.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Start connects the event channel. On failure the loop stays idle and Start
// may be retried.
func (l *Loop) Start(ctx context.Context) error {
	switch state := l.State(); {
	case state.Terminal():
		return ErrLoopDone
	case state != StateIdle:
		return fmt.Errorf("watch loop already %s", state)
	}
	if err := l.channel.Connect(ctx); err != nil {
		return fmt.Errorf("start watch loop: %w", err)
	}
	l.setState(StateConnected)
	l.logger.Info("watch loop connected", logging.Duration("poll_interval", l.pollInterval))
	return nil
}

// Run processes events until Stop is called, ctx ends or the connection
// fails. An idle loop is started first. Stop and cancellation return once the
// current poll cycle completes; cancellation reports ctx.Err(). A lost
// connection leaves the loop errored and is reported exactly once.
func (l *Loop) Run(ctx context.Context) error {
	if l.State().Terminal() {
		return ErrLoopDone
	}
	if l.State() == StateIdle {
		if err := l.Start(ctx); err != nil {
			return err
		}
	}

	for {
		if l.stop.Load() {
			return l.finish(nil)
		}
		if err := ctx.Err(); err != nil {
			return l.finish(err)
		}

		l.setState(StatePolling)
		ready, err := l.channel.Poll(l.pollInterval)
		if err != nil {
			return l.fail(err)
		}
		if !ready {
			continue
		}

		data, err := l.channel.ReadAvailable()
		if err != nil {
			return l.fail(err)
		}
		for _, ev := range l.parser.Feed(data) {
			if l.stop.Load() {
				break
			}
			l.dispatch(ev)
		}
	}
}

// Stop asks the loop to finish at the next cycle boundary. It only sets a
// flag and is safe to call from any goroutine, including a handler. Stopping
// an idle loop retires it without connecting; stopping an errored loop moves
// it to Stopped.
func (l *Loop) Stop() {
	l.stop.Store(true)
	for _, from := range []State{StateIdle, StateErrored} {
		if l.state.CompareAndSwap(int32(from), int32(StateStopped)) {
			l.recordState(StateStopped)
			return
		}
	}
}

func (l *Loop) dispatch(ev ipc.RawEvent) {
	l.setState(StateDispatching)
	defer l.setState(StatePolling)

	if l.onFrame != nil {
		l.onFrame(ev)
	}
	if l.recorder != nil {
		l.recorder.RecordEvent(ev.Name)
	}
	if !l.bus.HasSubscribers(ev.Name) {
		return
	}

	data, err := l.interpreter.Interpret(ev)
	if err != nil {
		var perr *ipc.ParseError
		if !errors.As(err, &perr) {
			perr = &ipc.ParseError{Frame: ev.String(), Reason: "interpret " + ev.Name, Err: err}
		}
		l.reportParseError(perr)
		return
	}
	l.bus.Dispatch(ev.Name, data)
}

func (l *Loop) reportParseError(perr *ipc.ParseError) {
	if l.recorder != nil {
		l.recorder.RecordParseError()
	}
	if !l.limiter.Allow() {
		l.suppressed++
		return
	}
	attrs := []logging.Attr{
		logging.Error(perr),
		logging.String(logging.FieldErrorHint, "compositor may be newer than this client"),
		logging.String(logging.FieldImpact, "one event dropped"),
	}
	if l.suppressed > 0 {
		attrs = append(attrs, logging.Int("suppressed", l.suppressed))
		l.suppressed = 0
	}
	logging.WarnWithContext(l.logger, "dropped malformed event", "event_parse_failed", attrs...)
}

func (l *Loop) finish(cause error) error {
	if err := l.channel.Close(); err != nil {
		l.logger.Debug("close event channel", logging.Error(err))
	}
	l.setState(StateStopped)
	l.logger.Info("watch loop stopped")
	return cause
}

func (l *Loop) fail(err error) error {
	_ = l.channel.Close()
	l.setState(StateErrored)
	logging.ErrorWithContext(l.logger, "watch loop lost the event socket", "event_socket_lost",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "compositor exited or restarted; start a new watch"),
	)
	return err
}

func (l *Loop) setState(state State) {
	if State(l.state.Swap(int32(state))) != state {
		l.recordState(state)
	}
}

func (l *Loop) recordState(state State) {
	if l.recorder != nil {
		l.recorder.RecordLoopState(state.String())
	}
}
