package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"hyprwatch/internal/logging"
)

// CommandRecorder observes command round trips. The metrics package provides
// the Prometheus implementation.
type CommandRecorder interface {
	RecordCommand(command string, elapsed time.Duration, err error)
}

// CommandChannel sends requests over the command socket. Every call dials a
// fresh connection, so the channel is safe for concurrent use and shares no
// state with the event path.
type CommandChannel struct {
	path     string
	timeout  time.Duration
	logger   *slog.Logger
	recorder CommandRecorder
}

// CommandOption customizes a CommandChannel.
type CommandOption func(*CommandChannel)

// WithCommandLogger attaches a logger.
func WithCommandLogger(logger *slog.Logger) CommandOption {
	return func(c *CommandChannel) {
		c.logger = logging.NewComponentLogger(logger, "ipc-command")
	}
}

// WithCommandRecorder attaches a metrics recorder.
func WithCommandRecorder(recorder CommandRecorder) CommandOption {
	return func(c *CommandChannel) {
		c.recorder = recorder
	}
}

// NewCommandChannel binds a channel to the endpoint's command socket. The
// timeout bounds the dial, the write and the wait for the reply.
func NewCommandChannel(ep Endpoint, timeout time.Duration, opts ...CommandOption) (*CommandChannel, error) {
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("command timeout must be positive, got %s", timeout)
	}
	c := &CommandChannel{
		path:    ep.CommandPath,
		timeout: timeout,
		logger:  logging.NewComponentLogger(nil, "ipc-command"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Path returns the command socket path.
func (c *CommandChannel) Path() string {
	return c.path
}

// Send writes request and returns every byte the compositor wrote before
// closing the connection.
//
// A reply cut short by a reset is reported as ErrConnectionClosed rather than
// returned as a short reply; the protocol has no length prefix, so the caller
// cannot tell a truncated payload from a complete one.
func (c *CommandChannel) Send(ctx context.Context, request string) ([]byte, error) {
	if strings.TrimSpace(request) == "" {
		return nil, errors.New("command request is empty")
	}

	started := time.Now()
	reply, err := c.send(ctx, request)
	if c.recorder != nil {
		c.recorder.RecordCommand(commandLabel(request), time.Since(started), err)
	}
	if err != nil {
		c.logger.Debug("command failed",
			logging.String("request", request),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err))
		return nil, err
	}
	c.logger.Debug("command completed",
		logging.String("request", request),
		logging.Int("reply_bytes", len(reply)),
		logging.Duration("elapsed", time.Since(started)))
	return reply, nil
}

func (c *CommandChannel) send(ctx context.Context, request string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.path)
	if err != nil {
		return nil, classifyDialError(ctx, c.path, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Unblock the read when the caller cancels before the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := io.WriteString(conn, request); err != nil {
		return nil, classifyIOError(ctx, "write", c.path, 0, err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return nil, classifyIOError(ctx, "read", c.path, len(reply), err)
	}
	return reply, nil
}

// Command formats a request the way hyprctl does ("<flags>/<name> <args>")
// and sends it.
func (c *CommandChannel) Command(ctx context.Context, name, flags string, args ...string) ([]byte, error) {
	request, err := FormatCommand(name, flags, args...)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, request)
}

// SendJSON sends a data query with the JSON flag set.
func (c *CommandChannel) SendJSON(ctx context.Context, name string, args ...string) ([]byte, error) {
	return c.Command(ctx, name, "j", args...)
}

// FormatCommand builds a request string. Empty tokens are rejected because the
// compositor splits arguments on whitespace.
func FormatCommand(name, flags string, args ...string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("command name is empty")
	}
	if strings.ContainsAny(name, " /") {
		return "", fmt.Errorf("invalid command name %q", name)
	}
	for i, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return "", fmt.Errorf("command %s: argument %d is empty", name, i)
		}
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(flags))
	b.WriteByte('/')
	b.WriteString(name)
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	return b.String(), nil
}

// commandLabel reduces a request to its command name for metric labels.
func commandLabel(request string) string {
	head, _, _ := strings.Cut(strings.TrimSpace(request), " ")
	if _, name, ok := strings.Cut(head, "/"); ok {
		head = name
	}
	if head == "" {
		return "unknown"
	}
	return head
}
