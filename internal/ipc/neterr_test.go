package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestClassifyDialError(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"missing", &net.OpError{Op: "dial", Net: "unix", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ENOENT}}, ErrConnection},
		{"refused", &net.OpError{Op: "dial", Net: "unix", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}, ErrConnection},
		{"deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), ErrTimeout},
		{"other", errors.New("permission denied"), ErrConnection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := classifyDialError(ctx, "/run/hypr/x/.socket.sock", tc.err); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClassifyIOErrorPartialReplyReset(t *testing.T) {
	reset := &net.OpError{Op: "read", Net: "unix", Err: &os.SyscallError{Syscall: "read", Err: syscall.ECONNRESET}}
	err := classifyIOError(context.Background(), "read", "/run/hypr/x/.socket.sock", 42, reset)
	if !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed, got %v", err)
	}
	if !errors.Is(err, syscall.ECONNRESET) {
		t.Fatalf("expected the syscall cause to stay reachable, got %v", err)
	}
}

func TestClassifyIOError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", os.ErrDeadlineExceeded, ErrTimeout},
		{"broken pipe", syscall.EPIPE, ErrConnectionClosed},
		{"unexpected eof", io.ErrUnexpectedEOF, ErrConnectionClosed},
		{"closed", net.ErrClosed, ErrConnectionClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := classifyIOError(context.Background(), "read", "sock", 0, tc.err); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClassifyIOErrorPrefersCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := classifyIOError(ctx, "read", "sock", 0, os.ErrDeadlineExceeded)
	if !errors.Is(err, context.Canceled) || errors.Is(err, ErrTimeout) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
