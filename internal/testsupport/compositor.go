package testsupport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"hyprwatch/internal/ipc"
)

// Signature is the instance signature reported by every fake compositor.
const Signature = "testsig_0001"

// Reply scripts the answer to one command request.
type Reply struct {
	Body string
	// Hang keeps the connection open without answering until the compositor
	// is closed.
	Hang bool
	// Release, when set, holds the answer until the channel is closed.
	Release <-chan struct{}
}

// Compositor serves the Hyprland command and event sockets from the test
// process. Command replies are scripted per request; events are pushed to
// every connected subscriber with Send.
type Compositor struct {
	t        testing.TB
	dir      string
	endpoint ipc.Endpoint

	commands net.Listener
	events   net.Listener

	mu          sync.Mutex
	replies     map[string]Reply
	fallback    func(request string) Reply
	requests    []string
	subscribers []net.Conn

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCompositor listens on both sockets inside a short temporary directory
// and registers cleanup. Unix socket paths are length limited, so t.TempDir
// is not used here.
func NewCompositor(t testing.TB) *Compositor {
	t.Helper()

	dir, err := os.MkdirTemp("", "hypr")
	if err != nil {
		t.Fatalf("create socket dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	endpoint, err := ipc.NewEndpoint(Signature, dir)
	if err != nil {
		t.Fatalf("build endpoint: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Compositor{
		t:        t,
		dir:      dir,
		endpoint: endpoint,
		replies:  make(map[string]Reply),
		ctx:      ctx,
		cancel:   cancel,
	}

	if c.commands, err = net.Listen("unix", endpoint.CommandPath); err != nil {
		cancel()
		t.Fatalf("listen on command socket: %v", err)
	}
	if c.events, err = net.Listen("unix", endpoint.EventPath); err != nil {
		_ = c.commands.Close()
		cancel()
		t.Fatalf("listen on event socket: %v", err)
	}

	c.serve(c.commands, c.handleCommand)
	c.serve(c.events, c.addSubscriber)
	t.Cleanup(c.Close)
	return c
}

// Endpoint returns the socket pair served by the compositor.
func (c *Compositor) Endpoint() ipc.Endpoint {
	return c.endpoint
}

// Dir returns the socket directory.
func (c *Compositor) Dir() string {
	return c.dir
}

// Respond scripts the body returned for an exact request string.
func (c *Compositor) Respond(request, body string) {
	c.Script(request, Reply{Body: body})
}

// Script registers a full reply for an exact request string.
func (c *Compositor) Script(request string, reply Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[request] = reply
}

// Fallback answers every request without a scripted reply.
func (c *Compositor) Fallback(fn func(request string) Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = fn
}

// Requests returns the command requests received so far, in arrival order.
func (c *Compositor) Requests() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.requests...)
}

// Subscribers reports how many event connections are open.
func (c *Compositor) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscribers)
}

// WaitForSubscribers blocks until at least n event connections are open.
func (c *Compositor) WaitForSubscribers(n int, timeout time.Duration) {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for c.Subscribers() < n {
		if time.Now().After(deadline) {
			c.t.Fatalf("timed out waiting for %d event subscribers, have %d", n, c.Subscribers())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Send writes raw bytes to every event subscriber. Callers supply their own
// frame terminators so split and batched frames can be produced.
func (c *Compositor) Send(data string) {
	c.t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conn := range c.subscribers {
		if _, err := io.WriteString(conn, data); err != nil {
			c.t.Errorf("write event data: %v", err)
		}
	}
}

// Event sends one complete frame.
func (c *Compositor) Event(name, payload string) {
	c.t.Helper()
	c.Send(name + ipc.NameSeparator + payload + "\n")
}

// HangUp closes every event connection, as the compositor does on exit.
func (c *Compositor) HangUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conn := range c.subscribers {
		_ = conn.Close()
	}
	c.subscribers = nil
}

// Close stops both listeners and drops every open connection.
func (c *Compositor) Close() {
	c.cancel()
	_ = c.commands.Close()
	_ = c.events.Close()
	c.HangUp()
	c.wg.Wait()
}

func (c *Compositor) serve(listener net.Listener, handle func(net.Conn)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			conn, err := listener.Accept()
			if err != nil {
				if c.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return
				}
				continue
			}
			c.wg.Add(1)
			go func(conn net.Conn) {
				defer c.wg.Done()
				handle(conn)
			}(conn)
		}
	}()
}

func (c *Compositor) handleCommand(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	// Clients half-close after writing, so the request ends at EOF.
	data, err := io.ReadAll(conn)
	if err != nil {
		return
	}
	request := string(data)

	c.mu.Lock()
	c.requests = append(c.requests, request)
	reply, ok := c.replies[request]
	if !ok {
		if c.fallback != nil {
			reply = c.fallback(request)
		} else {
			reply = Reply{Body: "unknown request"}
		}
	}
	c.mu.Unlock()

	if reply.Hang {
		<-c.ctx.Done()
		return
	}
	if reply.Release != nil {
		select {
		case <-reply.Release:
		case <-c.ctx.Done():
			return
		}
	}
	_, _ = io.WriteString(conn, reply.Body)
}

func (c *Compositor) addSubscriber(conn net.Conn) {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.subscribers = append(c.subscribers, conn)
	c.mu.Unlock()
}
