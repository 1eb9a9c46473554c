package ipc_test

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hyprwatch/internal/ipc"
	"hyprwatch/internal/testsupport"
)

func TestWaitForSocketsReturnsWhenPresent(t *testing.T) {
	comp := testsupport.NewCompositor(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ipc.WaitForSockets(ctx, comp.Endpoint()); err != nil {
		t.Fatalf("WaitForSockets returned error: %v", err)
	}
}

func TestWaitForSocketsSeesLateCompositor(t *testing.T) {
	base, err := os.MkdirTemp("", "hw")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(base) })

	dir := filepath.Join(base, "sig")
	ep, err := ipc.NewEndpoint("sig", dir)
	if err != nil {
		t.Fatalf("NewEndpoint: %v", err)
	}

	listeners := make(chan []net.Listener, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		if err := os.Mkdir(dir, 0o755); err != nil {
			listeners <- nil
			return
		}
		time.Sleep(20 * time.Millisecond)
		var opened []net.Listener
		for _, path := range []string{ep.CommandPath, ep.EventPath} {
			l, err := net.Listen("unix", path)
			if err == nil {
				opened = append(opened, l)
			}
		}
		listeners <- opened
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err = ipc.WaitForSockets(ctx, ep)

	opened := <-listeners
	for _, l := range opened {
		_ = l.Close()
	}
	if len(opened) != 2 {
		t.Fatalf("test setup failed to open both sockets")
	}
	if err != nil {
		t.Fatalf("WaitForSockets returned error: %v", err)
	}
}

func TestWaitForSocketsHonoursContext(t *testing.T) {
	base, err := os.MkdirTemp("", "hw")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(base) })
	ep, _ := ipc.NewEndpoint("sig", filepath.Join(base, "sig"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := ipc.WaitForSockets(ctx, ep); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
