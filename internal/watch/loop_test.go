package watch_test

import (
	"context"
	"errors"
	"os"
	"reflect"
	"sync"
	"testing"
	"time"

	"hyprwatch/internal/ipc"
	"hyprwatch/internal/signals"
	"hyprwatch/internal/testsupport"
	"hyprwatch/internal/watch"
)

type countingRecorder struct {
	mu          sync.Mutex
	events      []string
	parseErrors int
	states      []string
}

func (r *countingRecorder) RecordEvent(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, name)
}

func (r *countingRecorder) RecordParseError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parseErrors++
}

func (r *countingRecorder) RecordLoopState(state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func newLoop(t *testing.T, comp *testsupport.Compositor, opts watch.Options) (*watch.Loop, *signals.Bus) {
	t.Helper()
	channel, err := ipc.NewEventChannel(comp.Endpoint(), ipc.EventOptions{ConnectTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewEventChannel: %v", err)
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = 10 * time.Millisecond
	}
	bus := signals.NewBus()
	loop, err := watch.New(channel, bus, nil, opts)
	if err != nil {
		t.Fatalf("watch.New: %v", err)
	}
	return loop, bus
}

func startLoop(t *testing.T, comp *testsupport.Compositor, loop *watch.Loop, ctx context.Context) <-chan error {
	t.Helper()
	if err := loop.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	comp.WaitForSubscribers(1, 2*time.Second)
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	return done
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("watch loop did not return")
		return nil
	}
}

func TestLoopDispatchesFramesInOrder(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	loop, bus := newLoop(t, comp, watch.Options{})

	type call struct {
		name string
		data signals.Data
	}
	var calls []call
	record := func(name string, data signals.Data) error {
		calls = append(calls, call{name, data})
		return nil
	}
	bus.Connect("workspace", record)
	bus.Connect("openwindow", func(name string, data signals.Data) error {
		_ = record(name, data)
		loop.Stop()
		return nil
	})

	done := startLoop(t, comp, loop, context.Background())
	comp.Send("workspace>>3\nopenwindow>>0x1a2b,1,firefox,Hello, World\n")

	if err := waitRun(t, done); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	want := []call{
		{"workspace", signals.Data{"workspace_name": "3"}},
		{"openwindow", signals.Data{
			"window_address": "0x1a2b",
			"workspace_name": "1",
			"window_class":   "firefox",
			"window_title":   "Hello, World",
		}},
	}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("calls = %#v, want %#v", calls, want)
	}
	if got := loop.State(); got != watch.StateStopped {
		t.Fatalf("state = %s, want stopped", got)
	}
}

func TestLoopReassemblesSplitFrames(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	loop, bus := newLoop(t, comp, watch.Options{})

	var titles []any
	bus.Connect("windowtitlev2", func(_ string, data signals.Data) error {
		titles = append(titles, data["window_title"])
		loop.Stop()
		return nil
	})

	done := startLoop(t, comp, loop, context.Background())
	comp.Send("windowtitlev2>>5581a2b0c3d0,nvim,")
	time.Sleep(30 * time.Millisecond)
	comp.Send(" main.go\n")

	if err := waitRun(t, done); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if len(titles) != 1 || titles[0] != "nvim, main.go" {
		t.Fatalf("titles = %v", titles)
	}
}

func TestLoopDropsEventsReadAfterStop(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	loop, bus := newLoop(t, comp, watch.Options{})

	var seen []any
	bus.Connect("workspace", func(_ string, data signals.Data) error {
		seen = append(seen, data["workspace_name"])
		loop.Stop()
		return nil
	})

	done := startLoop(t, comp, loop, context.Background())
	comp.Send("workspace>>1\nworkspace>>2\n")

	if err := waitRun(t, done); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if len(seen) != 1 || seen[0] != "1" {
		t.Fatalf("seen = %v, want only the first event", seen)
	}
}

func TestLoopSkipsMalformedFrames(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	recorder := &countingRecorder{}
	loop, bus := newLoop(t, comp, watch.Options{Recorder: recorder})

	v2Calls := 0
	bus.Connect("workspacev2", func(string, signals.Data) error {
		v2Calls++
		return nil
	})
	var names []any
	bus.Connect("workspace", func(_ string, data signals.Data) error {
		names = append(names, data["workspace_name"])
		loop.Stop()
		return nil
	})

	done := startLoop(t, comp, loop, context.Background())
	comp.Send("garbage without separator\nworkspacev2>>x,3\nworkspace>>5\n")

	if err := waitRun(t, done); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if v2Calls != 0 {
		t.Fatalf("workspacev2 handler ran %d times for an invalid id", v2Calls)
	}
	if len(names) != 1 || names[0] != "5" {
		t.Fatalf("names = %v", names)
	}
	if recorder.parseErrors != 2 {
		t.Fatalf("parse errors = %d, want 2", recorder.parseErrors)
	}
}

func TestLoopReportsFramesWithoutSubscribers(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	recorder := &countingRecorder{}
	var frames []string
	loop, bus := newLoop(t, comp, watch.Options{
		Recorder: recorder,
		OnFrame:  func(ev ipc.RawEvent) { frames = append(frames, ev.String()) },
	})
	bus.Connect("workspace", func(string, signals.Data) error {
		loop.Stop()
		return nil
	})

	done := startLoop(t, comp, loop, context.Background())
	comp.Send("openlayer>>waybar\nworkspace>>1\n")

	if err := waitRun(t, done); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	want := []string{"openlayer>>waybar", "workspace>>1"}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("frames = %v, want %v", frames, want)
	}
	if !reflect.DeepEqual(recorder.events, []string{"openlayer", "workspace"}) {
		t.Fatalf("recorded events = %v", recorder.events)
	}
}

func TestLoopPeerCloseIsReportedOnce(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	loop, _ := newLoop(t, comp, watch.Options{})

	done := startLoop(t, comp, loop, context.Background())
	comp.HangUp()

	err := waitRun(t, done)
	if !errors.Is(err, ipc.ErrConnectionClosed) {
		t.Fatalf("Run returned %v, want ErrConnectionClosed", err)
	}
	if got := loop.State(); got != watch.StateErrored {
		t.Fatalf("state = %s, want errored", got)
	}
	if err := loop.Run(context.Background()); !errors.Is(err, watch.ErrLoopDone) {
		t.Fatalf("second Run returned %v, want ErrLoopDone", err)
	}
	loop.Stop()
	if got := loop.State(); got != watch.StateStopped {
		t.Fatalf("state after Stop = %s, want stopped", got)
	}
}

func TestLoopHonorsContextCancellation(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	loop, _ := newLoop(t, comp, watch.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := startLoop(t, comp, loop, ctx)
	cancel()

	if err := waitRun(t, done); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if got := loop.State(); got != watch.StateStopped {
		t.Fatalf("state = %s, want stopped", got)
	}
	if err := loop.Start(context.Background()); !errors.Is(err, watch.ErrLoopDone) {
		t.Fatalf("Start after stop returned %v, want ErrLoopDone", err)
	}
}

func TestLoopStopFromAnotherGoroutine(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	loop, _ := newLoop(t, comp, watch.Options{})

	done := startLoop(t, comp, loop, context.Background())
	time.Sleep(20 * time.Millisecond)
	loop.Stop()

	if err := waitRun(t, done); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if got := loop.State(); got != watch.StateStopped {
		t.Fatalf("state = %s, want stopped", got)
	}
}

func TestLoopStopLatencyIsBoundedByPollInterval(t *testing.T) {
	const (
		interval = 200 * time.Millisecond
		slack    = 150 * time.Millisecond
	)

	t.Run("from a handler", func(t *testing.T) {
		comp := testsupport.NewCompositor(t)
		loop, bus := newLoop(t, comp, watch.Options{PollInterval: interval})

		var stoppedAt time.Time
		bus.Connect("workspace", func(string, signals.Data) error {
			stoppedAt = time.Now()
			loop.Stop()
			return nil
		})

		done := startLoop(t, comp, loop, context.Background())
		comp.Event("workspace", "1")
		if err := waitRun(t, done); err != nil {
			t.Fatalf("Run returned %v", err)
		}
		if elapsed := time.Since(stoppedAt); elapsed > interval+slack {
			t.Fatalf("Run returned %s after Stop, want at most %s", elapsed, interval+slack)
		}
		if got := loop.State(); got != watch.StateStopped {
			t.Fatalf("state = %s, want stopped", got)
		}
	})

	t.Run("while polling", func(t *testing.T) {
		comp := testsupport.NewCompositor(t)
		loop, _ := newLoop(t, comp, watch.Options{PollInterval: interval})

		done := startLoop(t, comp, loop, context.Background())
		time.Sleep(interval / 4)
		stoppedAt := time.Now()
		loop.Stop()
		if err := waitRun(t, done); err != nil {
			t.Fatalf("Run returned %v", err)
		}
		if elapsed := time.Since(stoppedAt); elapsed > interval+slack {
			t.Fatalf("Run returned %s after Stop, want at most %s", elapsed, interval+slack)
		}
	})
}

func TestLoopStartFailureStaysIdle(t *testing.T) {
	dir, err := os.MkdirTemp("", "hypr")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	ep, err := ipc.NewEndpoint("absent", dir)
	if err != nil {
		t.Fatalf("NewEndpoint: %v", err)
	}
	channel, err := ipc.NewEventChannel(ep, ipc.EventOptions{ConnectTimeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewEventChannel: %v", err)
	}
	loop, err := watch.New(channel, signals.NewBus(), nil, watch.Options{})
	if err != nil {
		t.Fatalf("watch.New: %v", err)
	}

	if err := loop.Start(context.Background()); !errors.Is(err, ipc.ErrConnection) {
		t.Fatalf("Start returned %v, want ErrConnection", err)
	}
	if got := loop.State(); got != watch.StateIdle {
		t.Fatalf("state = %s, want idle", got)
	}
}

func TestLoopStoppedBeforeStartIsDone(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	loop, _ := newLoop(t, comp, watch.Options{})

	loop.Stop()
	if got := loop.State(); got != watch.StateStopped {
		t.Fatalf("state = %s, want stopped", got)
	}
	if err := loop.Run(context.Background()); !errors.Is(err, watch.ErrLoopDone) {
		t.Fatalf("Run returned %v, want ErrLoopDone", err)
	}
	if comp.Subscribers() != 0 {
		t.Fatalf("stopped loop connected to the event socket")
	}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	if _, err := watch.New(nil, signals.NewBus(), nil, watch.Options{}); err == nil {
		t.Fatal("expected error for nil channel")
	}
	comp := testsupport.NewCompositor(t)
	channel, err := ipc.NewEventChannel(comp.Endpoint(), ipc.EventOptions{ConnectTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewEventChannel: %v", err)
	}
	if _, err := watch.New(channel, nil, nil, watch.Options{}); err == nil {
		t.Fatal("expected error for nil dispatcher")
	}
}

func TestStateNames(t *testing.T) {
	cases := map[watch.State]string{
		watch.StateIdle:        "idle",
		watch.StateConnected:   "connected",
		watch.StatePolling:     "polling",
		watch.StateDispatching: "dispatching",
		watch.StateStopped:     "stopped",
		watch.StateErrored:     "errored",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
	if !watch.StateErrored.Terminal() || watch.StatePolling.Terminal() {
		t.Error("Terminal reports the wrong states")
	}
}
