package ipc_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"hyprwatch/internal/ipc"
	"hyprwatch/internal/testsupport"
)

func connectEvents(t *testing.T, comp *testsupport.Compositor) *ipc.EventChannel {
	t.Helper()
	ch, err := ipc.NewEventChannel(comp.Endpoint(), ipc.EventOptions{ConnectTimeout: time.Second, ReadBufferSize: 64})
	if err != nil {
		t.Fatalf("NewEventChannel returned error: %v", err)
	}
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() { _ = ch.Close() })
	comp.WaitForSubscribers(1, time.Second)
	return ch
}

// readUntil polls and reads until want bytes arrived or the deadline passes.
func readUntil(t *testing.T, ch *ipc.EventChannel, want int) string {
	t.Helper()
	var got strings.Builder
	deadline := time.Now().Add(2 * time.Second)
	for got.Len() < want && time.Now().Before(deadline) {
		ready, err := ch.Poll(50 * time.Millisecond)
		if err != nil {
			t.Fatalf("Poll returned error: %v", err)
		}
		if !ready {
			continue
		}
		data, err := ch.ReadAvailable()
		if err != nil {
			t.Fatalf("ReadAvailable returned error: %v", err)
		}
		got.Write(data)
	}
	return got.String()
}

func TestPollTimesOutWithoutData(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	ch := connectEvents(t, comp)

	started := time.Now()
	ready, err := ch.Poll(30 * time.Millisecond)
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if ready {
		t.Fatal("expected no readiness without data")
	}
	if elapsed := time.Since(started); elapsed < 20*time.Millisecond {
		t.Fatalf("Poll returned too early after %s", elapsed)
	}
	if !ch.Alive() {
		t.Fatal("channel should stay alive after a timeout")
	}
}

func TestReadAvailableReturnsBatchedFrames(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	ch := connectEvents(t, comp)

	stream := "workspace>>3\nactivewindow>>kitty,~\nopenwindow>>0x1a2b,1,firefox,Mozilla Firefox\n"
	comp.Send(stream)

	got := readUntil(t, ch, len(stream))
	if got != stream {
		t.Fatalf("unexpected stream: %q", got)
	}
}

func TestReadAvailableWithoutDataDoesNotBlock(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	ch := connectEvents(t, comp)

	data, err := ch.ReadAvailable()
	if err != nil {
		t.Fatalf("ReadAvailable returned error: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected no data, got %q", data)
	}
}

func TestPeerCloseIsTerminal(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	ch := connectEvents(t, comp)

	comp.HangUp()

	var terminal error
	deadline := time.Now().Add(2 * time.Second)
	for terminal == nil && time.Now().Before(deadline) {
		ready, err := ch.Poll(50 * time.Millisecond)
		if err != nil {
			terminal = err
			break
		}
		if ready {
			_, terminal = ch.ReadAvailable()
		}
	}
	if !errors.Is(terminal, ipc.ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed, got %v", terminal)
	}
	if ch.Alive() {
		t.Fatal("channel must be dead after peer close")
	}
	if _, err := ch.Poll(time.Millisecond); !errors.Is(err, ipc.ErrConnectionClosed) {
		t.Fatalf("expected subsequent Poll to fail with ErrConnectionClosed, got %v", err)
	}
	if _, err := ch.ReadAvailable(); !errors.Is(err, ipc.ErrConnectionClosed) {
		t.Fatalf("expected subsequent read to fail with ErrConnectionClosed, got %v", err)
	}
	if err := ch.Connect(context.Background()); !errors.Is(err, ipc.ErrConnectionClosed) {
		t.Fatalf("dead channel must not reconnect, got %v", err)
	}
}

func TestEventConnectMissingSocket(t *testing.T) {
	dir, err := os.MkdirTemp("", "hypr")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	ep, _ := ipc.NewEndpoint("missing", dir)

	ch, err := ipc.NewEventChannel(ep, ipc.EventOptions{ConnectTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewEventChannel returned error: %v", err)
	}
	if err := ch.Connect(context.Background()); !errors.Is(err, ipc.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	comp := testsupport.NewCompositor(t)
	ch := connectEvents(t, comp)

	if err := ch.Close(); err != nil {
		t.Fatalf("first Close returned error: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	if _, err := ch.Poll(time.Millisecond); !errors.Is(err, ipc.ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed after Close, got %v", err)
	}
}

func TestPollBeforeConnect(t *testing.T) {
	ep, _ := ipc.NewEndpoint("sig", "/tmp/hypr/sig")
	ch, err := ipc.NewEventChannel(ep, ipc.EventOptions{ConnectTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewEventChannel returned error: %v", err)
	}
	if _, err := ch.Poll(time.Millisecond); !errors.Is(err, ipc.ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed before Connect, got %v", err)
	}
}
