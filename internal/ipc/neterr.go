package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

func classifyDialError(ctx context.Context, path string, err error) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("%w: socket %s not found; verify Hyprland is running", ErrConnection, path)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: socket %s refused the connection", ErrConnection, path)
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return fmt.Errorf("dial %s: %w", path, ctx.Err())
	case isTimeout(err):
		return fmt.Errorf("%w: dial %s: %w", ErrTimeout, path, err)
	default:
		return fmt.Errorf("%w: dial %s: %w", ErrConnection, path, err)
	}
}

// classifyIOError maps a failure during an established exchange. received is
// the number of reply bytes seen before the failure.
func classifyIOError(ctx context.Context, op, path string, received int, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%s %s: %w", op, path, context.Canceled)
	}
	switch {
	case isTimeout(err):
		return fmt.Errorf("%w: %s %s after %d bytes", ErrTimeout, op, path, received)
	case isPeerGone(err):
		return fmt.Errorf("%w: %s %s after %d bytes: %w", ErrConnectionClosed, op, path, received, err)
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isPeerGone(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}
