package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"hyprwatch/internal/logging"
)

// DefaultReadBufferSize is used when EventOptions.ReadBufferSize is zero.
const DefaultReadBufferSize = 8192

// pollFds is swapped in tests to simulate readiness failures.
var pollFds = unix.Poll

// EventOptions configures an EventChannel.
type EventOptions struct {
	ConnectTimeout time.Duration
	ReadBufferSize int
	Logger         *slog.Logger
}

// EventChannel is the persistent connection to the event socket. It is owned
// by a single goroutine (the watch loop) and is not safe for concurrent use.
//
// Once the peer hangs up every method returns ErrConnectionClosed; a channel
// is never reconnected in place.
type EventChannel struct {
	path           string
	connectTimeout time.Duration
	logger         *slog.Logger

	conn    *net.UnixConn
	raw     syscall.RawConn
	scratch []byte
	closed  bool
	cause   error
}

// NewEventChannel binds a channel to the endpoint's event socket without
// connecting.
func NewEventChannel(ep Endpoint, opts EventOptions) (*EventChannel, error) {
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	if opts.ConnectTimeout <= 0 {
		return nil, fmt.Errorf("event connect timeout must be positive, got %s", opts.ConnectTimeout)
	}
	size := opts.ReadBufferSize
	if size <= 0 {
		size = DefaultReadBufferSize
	}
	return &EventChannel{
		path:           ep.EventPath,
		connectTimeout: opts.ConnectTimeout,
		logger:         logging.NewComponentLogger(opts.Logger, "ipc-events"),
		scratch:        make([]byte, size),
	}, nil
}

// Path returns the event socket path.
func (c *EventChannel) Path() string {
	return c.path
}

// Connect opens the persistent connection.
func (c *EventChannel) Connect(ctx context.Context) error {
	if c.closed {
		return c.closedError()
	}
	if c.conn != nil {
		return fmt.Errorf("event socket %s already connected", c.path)
	}

	dialer := net.Dialer{Timeout: c.connectTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.path)
	if err != nil {
		return classifyDialError(ctx, c.path, err)
	}
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		_ = conn.Close()
		return fmt.Errorf("%w: %s is not a unix socket", ErrConnection, c.path)
	}
	raw, err := unixConn.SyscallConn()
	if err != nil {
		_ = unixConn.Close()
		return fmt.Errorf("%w: access descriptor for %s: %w", ErrConnection, c.path, err)
	}

	c.conn = unixConn
	c.raw = raw
	c.logger.Debug("event socket connected", logging.String("socket", c.path))
	return nil
}

// Poll waits up to timeout for the socket to become readable. It returns false
// when the timeout elapses and consumes no data either way.
func (c *EventChannel) Poll(timeout time.Duration) (bool, error) {
	if err := c.usable(); err != nil {
		return false, err
	}

	millis := int(timeout / time.Millisecond)
	if timeout > 0 && millis == 0 {
		millis = 1
	}

	var (
		revents int16
		pollErr error
	)
	ctrlErr := c.raw.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		for {
			n, err := pollFds(fds, millis)
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if err != nil {
				pollErr = err
				return
			}
			if n > 0 {
				revents = fds[0].Revents
			}
			return
		}
	})
	if ctrlErr != nil {
		return false, c.fail(ctrlErr)
	}
	if pollErr != nil {
		return false, c.fail(fmt.Errorf("poll: %w", pollErr))
	}

	switch {
	case revents&unix.POLLIN != 0:
		// A hangup with pending data still reports POLLIN; the read that
		// drains it observes EOF afterwards.
		return true, nil
	case revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0:
		return false, c.fail(fmt.Errorf("poll revents 0x%x", revents))
	default:
		return false, nil
	}
}

// ReadAvailable performs one non-blocking read and returns a copy of the bytes
// received. A read that would block returns an empty slice and no error. The
// channel keeps no data between calls; partial frames are held by the
// LineParser the bytes are fed to.
func (c *EventChannel) ReadAvailable() ([]byte, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}

	var (
		n       int
		readErr error
	)
	ctrlErr := c.raw.Read(func(fd uintptr) bool {
		for {
			n, readErr = unix.Read(int(fd), c.scratch)
			if !errors.Is(readErr, unix.EINTR) {
				return true
			}
		}
	})
	if ctrlErr != nil {
		return nil, c.fail(ctrlErr)
	}

	switch {
	case errors.Is(readErr, unix.EAGAIN) || errors.Is(readErr, unix.EWOULDBLOCK):
		return nil, nil
	case readErr != nil:
		return nil, c.fail(readErr)
	case n == 0:
		return nil, c.fail(errors.New("peer closed the event socket"))
	}

	out := make([]byte, n)
	copy(out, c.scratch[:n])
	return out, nil
}

// Close releases the connection. It is idempotent.
func (c *EventChannel) Close() error {
	if c.closed && c.conn == nil {
		return nil
	}
	c.closed = true
	if c.cause == nil {
		c.cause = errors.New("channel closed")
	}
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.raw = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close event socket: %w", err)
	}
	return nil
}

// Alive reports whether the channel is connected and has not failed.
func (c *EventChannel) Alive() bool {
	return c.conn != nil && !c.closed
}

func (c *EventChannel) usable() error {
	if c.closed {
		return c.closedError()
	}
	if c.conn == nil {
		return fmt.Errorf("%w: event socket %s not connected", ErrConnectionClosed, c.path)
	}
	return nil
}

// fail marks the channel dead, releases the descriptor and returns the
// terminal error.
func (c *EventChannel) fail(cause error) error {
	c.cause = cause
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
		c.raw = nil
	}
	c.logger.Debug("event socket closed", logging.String("socket", c.path), logging.Error(cause))
	return c.closedError()
}

func (c *EventChannel) closedError() error {
	if c.cause != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnectionClosed, c.path, c.cause)
	}
	return fmt.Errorf("%w: %s", ErrConnectionClosed, c.path)
}
