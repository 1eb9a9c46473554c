package hyprland

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"hyprwatch/internal/config"
	"hyprwatch/internal/events"
	"hyprwatch/internal/ipc"
	"hyprwatch/internal/logging"
	"hyprwatch/internal/metrics"
	"hyprwatch/internal/signals"
	"hyprwatch/internal/watch"
)

const (
	DefaultConnectTimeout = 2 * time.Second
	DefaultCommandTimeout = 5 * time.Second
)

// Options tunes an Instance. Zero values select the defaults.
type Options struct {
	ConnectTimeout         time.Duration
	CommandTimeout         time.Duration
	ReadBufferSize         int
	PollInterval           time.Duration
	ParseWarningsPerSecond float64
	// CacheTTL enables the query cache when positive.
	CacheTTL time.Duration
	Logger   *slog.Logger
	Metrics  *metrics.Manager
}

// Instance is the facade over one running compositor: typed queries on the
// command socket, dispatch, and event subscriptions fed by a watch loop.
// Queries and subscriptions are safe for concurrent use. At most one Watch
// runs at a time.
type Instance struct {
	endpoint ipc.Endpoint
	commands *ipc.CommandChannel
	bus      *signals.Bus
	catalog  *events.Catalog
	cache    *queryCache
	logger   *slog.Logger

	eventOpts ipc.EventOptions
	watchOpts watch.Options

	mu   sync.Mutex
	loop *watch.Loop
}

// New binds an instance to an endpoint. No socket is opened.
func New(ep ipc.Endpoint, opts Options) (*Instance, error) {
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	commandTimeout := opts.CommandTimeout
	if commandTimeout <= 0 {
		commandTimeout = DefaultCommandTimeout
	}

	logger := logging.NewComponentLogger(opts.Logger, "hyprland").With(
		logging.String(logging.FieldInstance, ep.String()),
	)

	commandOpts := []ipc.CommandOption{ipc.WithCommandLogger(opts.Logger)}
	busOpts := []signals.Option{signals.WithLogger(opts.Logger)}
	var recorder watch.Recorder
	if opts.Metrics.Enabled() {
		commandOpts = append(commandOpts, ipc.WithCommandRecorder(opts.Metrics))
		busOpts = append(busOpts, signals.WithRecorder(opts.Metrics))
		recorder = opts.Metrics
	}

	commands, err := ipc.NewCommandChannel(ep, commandTimeout, commandOpts...)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		endpoint: ep,
		commands: commands,
		bus:      signals.NewBus(busOpts...),
		catalog:  events.NewCatalog(),
		cache:    newQueryCache(opts.CacheTTL, opts.Metrics),
		logger:   logger,
		eventOpts: ipc.EventOptions{
			ConnectTimeout: connectTimeout,
			ReadBufferSize: opts.ReadBufferSize,
			Logger:         opts.Logger,
		},
		watchOpts: watch.Options{
			PollInterval:           opts.PollInterval,
			ParseWarningsPerSecond: opts.ParseWarningsPerSecond,
			Logger:                 opts.Logger,
			Recorder:               recorder,
		},
	}
	inst.watchOpts.OnFrame = inst.onFrame
	return inst, nil
}

// NewFromEnv discovers the running compositor from the process environment.
func NewFromEnv(opts Options) (*Instance, error) {
	ep, err := ipc.Discovery{}.Endpoint()
	if err != nil {
		return nil, err
	}
	return New(ep, opts)
}

// NewFromConfig resolves the endpoint and every tunable from cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, m *metrics.Manager) (*Instance, error) {
	if cfg == nil {
		return nil, fmt.Errorf("hyprland instance requires a config")
	}
	ep, err := Endpoint(cfg)
	if err != nil {
		return nil, err
	}
	return New(ep, Options{
		ConnectTimeout:         cfg.ConnectTimeout(),
		CommandTimeout:         cfg.CommandTimeout(),
		ReadBufferSize:         cfg.IPC.ReadBufferBytes,
		PollInterval:           cfg.PollInterval(),
		ParseWarningsPerSecond: cfg.Watch.ParseWarningsPerSecond,
		CacheTTL:               cfg.CacheTTL(),
		Logger:                 logger,
		Metrics:                m,
	})
}

// Endpoint resolves the socket pair selected by cfg, falling back to the
// process environment for anything cfg leaves empty.
func Endpoint(cfg *config.Config) (ipc.Endpoint, error) {
	return ipc.Discovery{
		Signature: cfg.Hyprland.Signature,
		SocketDir: cfg.Hyprland.SocketDir,
	}.Endpoint()
}

// Endpoint returns the socket pair this instance talks to.
func (i *Instance) Endpoint() ipc.Endpoint {
	return i.endpoint
}

// Signature returns the compositor instance signature, if known.
func (i *Instance) Signature() string {
	return i.endpoint.Signature
}

// Bus exposes the signal bus events are dispatched on.
func (i *Instance) Bus() *signals.Bus {
	return i.bus
}

// Catalog exposes the event interpreter so callers can register parsers for
// events this build does not know.
func (i *Instance) Catalog() *events.Catalog {
	return i.catalog
}

// RawCommand sends request unchanged and returns the raw reply.
func (i *Instance) RawCommand(ctx context.Context, request string) ([]byte, error) {
	return i.commands.Send(ctx, request)
}

// Dispatch runs a dispatcher ("workspace 2", "exec kitty"). The compositor
// answers "ok" on success; any other reply becomes a *DispatchError.
func (i *Instance) Dispatch(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("dispatch requires a dispatcher name")
	}
	reply, err := i.commands.Command(ctx, "dispatch", "", args...)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", strings.Join(args, " "), err)
	}
	i.cache.flush()
	if text := strings.TrimSpace(string(reply)); text != "ok" {
		return &DispatchError{Args: args, Reply: text}
	}
	return nil
}

func (i *Instance) onFrame(ipc.RawEvent) {
	i.cache.flush()
}
