package hyprland

import (
	"context"
	"errors"

	"hyprwatch/internal/ipc"
	"hyprwatch/internal/logging"
	"hyprwatch/internal/signals"
	"hyprwatch/internal/watch"
)

// Connect subscribes fn to the named event, or to every event with
// signals.Wildcard. Handlers run on the goroutine that called Watch.
func (i *Instance) Connect(name string, fn signals.Handler) signals.Subscription {
	return i.bus.Connect(name, fn)
}

// Disconnect removes a subscription made with Connect.
func (i *Instance) Disconnect(sub signals.Subscription) bool {
	return i.bus.Disconnect(sub)
}

// NewLoop builds an unstarted watch loop bound to this instance's bus,
// interpreter and cache. Most callers use Watch instead.
func (i *Instance) NewLoop() (*watch.Loop, error) {
	channel, err := ipc.NewEventChannel(i.endpoint, i.eventOpts)
	if err != nil {
		return nil, err
	}
	return watch.New(channel, i.bus, i.catalog, i.watchOpts)
}

// Watch connects to the event socket and dispatches events to subscribers
// until Stop is called, ctx ends or the compositor goes away. It blocks the
// calling goroutine. A lost connection is returned as ipc.ErrConnectionClosed;
// call Watch again to reconnect.
func (i *Instance) Watch(ctx context.Context) error {
	loop, err := i.NewLoop()
	if err != nil {
		return err
	}

	i.mu.Lock()
	if i.loop != nil {
		i.mu.Unlock()
		return ErrWatching
	}
	i.loop = loop
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.loop = nil
		i.mu.Unlock()
	}()

	i.logger.Info("watching compositor events", logging.String(logging.FieldSocket, i.endpoint.EventPath))
	err = loop.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	default:
		i.logger.Warn("event watch ended", logging.Error(err))
	}
	return err
}

// Stop asks the running Watch to return at its next poll cycle. It is a no-op
// when nothing is watching and safe to call from a handler.
func (i *Instance) Stop() {
	i.mu.Lock()
	loop := i.loop
	i.mu.Unlock()
	if loop != nil {
		loop.Stop()
	}
}

// Watching reports whether a Watch call is in progress.
func (i *Instance) Watching() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.loop != nil
}
