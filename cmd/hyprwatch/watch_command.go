package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hyprwatch/internal/ipc"
	"hyprwatch/internal/logging"
	"hyprwatch/internal/metrics"
	"hyprwatch/internal/signals"
)

type watchOptions struct {
	events        []string
	asJSON        bool
	asText        bool
	exclusive     bool
	wait          bool
	count         int
	metricsListen string
}

type eventRecord struct {
	Time  time.Time    `json:"time"`
	Event string       `json:"event"`
	Data  signals.Data `json:"data"`
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print compositor events as they happen",
		Long: "Print compositor events as they happen. Output is JSON lines when stdout\n" +
			"is not a terminal, or with --json.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.asJSON && opts.asText {
				return errors.New("--json and --text are mutually exclusive")
			}
			if opts.count < 0 {
				return fmt.Errorf("--count must not be negative, got %d", opts.count)
			}
			return runWatch(cmd, ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.events, "event", "e", nil, "Only print these events (repeatable)")
	flags.BoolVar(&opts.asJSON, "json", false, "Print JSON lines")
	flags.BoolVar(&opts.asText, "text", false, "Print human readable lines even when stdout is not a terminal")
	flags.BoolVar(&opts.exclusive, "exclusive", false, "Refuse to start when another exclusive watcher runs for this compositor")
	flags.BoolVar(&opts.wait, "wait", false, "Wait for the compositor sockets to appear before connecting")
	flags.IntVarP(&opts.count, "count", "n", 0, "Exit after printing this many events (0 means run until interrupted)")
	flags.StringVar(&opts.metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address (overrides [metrics])")
	return cmd
}

func runWatch(cmd *cobra.Command, ctx *commandContext, opts *watchOptions) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	listen := strings.TrimSpace(opts.metricsListen)
	if listen == "" && cfg.Metrics.Enabled {
		listen = cfg.Metrics.Listen
	}
	var m *metrics.Manager
	if listen != "" {
		m = metrics.NewManager(metrics.DefaultConfig())
		go func() {
			if err := m.ListenAndServe(signalCtx, listen, "/metrics"); err != nil {
				logging.WarnWithContext(logger, "metrics endpoint stopped", "metrics_serve_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check metrics.listen"),
					logging.String(logging.FieldImpact, "metrics unavailable"),
				)
			}
		}()
	}

	inst, err := ctx.newInstance(m)
	if err != nil {
		return err
	}

	if opts.exclusive {
		lock, err := acquireWatchLock(cfg.Watch.LockDir, inst.Endpoint())
		if err != nil {
			return err
		}
		defer func() { _ = lock.Unlock() }()
	}

	if opts.wait {
		logger.Info("waiting for compositor sockets", logging.String(logging.FieldSocket, inst.Endpoint().Dir()))
		if err := ipc.WaitForSockets(signalCtx, inst.Endpoint()); err != nil {
			return wrapConnectError(err)
		}
	}

	out := cmd.OutOrStdout()
	jsonOut := opts.asJSON || (!opts.asText && !isTerminal(out))
	printer := newEventPrinter(out, jsonOut, isTerminal(out))

	printed := 0
	handler := func(name string, data signals.Data) error {
		if err := printer.print(name, data); err != nil {
			return err
		}
		printed++
		if opts.count > 0 && printed >= opts.count {
			inst.Stop()
		}
		return nil
	}

	names := opts.events
	if len(names) == 0 {
		names = []string{signals.Wildcard}
	}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			inst.Connect(name, handler)
		}
	}

	err = inst.Watch(signalCtx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled) && cmd.Context().Err() == nil:
		// Interrupted by SIGINT or SIGTERM.
		return nil
	default:
		return wrapConnectError(err)
	}
}

// acquireWatchLock takes a per-compositor lock so only one exclusive watcher
// serves a given instance.
func acquireWatchLock(dir string, ep ipc.Endpoint) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory %q: %w", dir, err)
	}
	name := ep.Signature
	if name == "" {
		name = filepath.Base(ep.Dir())
	}
	path := filepath.Join(dir, name+".lock")

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire watch lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another exclusive watcher is already running for %s (lock %s)", ep, path)
	}
	return lock, nil
}

type eventPrinter struct {
	out      io.Writer
	json     bool
	colorize bool
	title    cases.Caser
}

func newEventPrinter(out io.Writer, asJSON, colorize bool) *eventPrinter {
	return &eventPrinter{
		out:      out,
		json:     asJSON,
		colorize: colorize,
		title:    cases.Title(language.Und),
	}
}

func (p *eventPrinter) print(name string, data signals.Data) error {
	now := time.Now()
	if p.json {
		line, err := json.Marshal(eventRecord{Time: now.UTC(), Event: name, Data: data})
		if err != nil {
			return fmt.Errorf("encode %s event: %w", name, err)
		}
		_, err = fmt.Fprintf(p.out, "%s\n", line)
		return err
	}

	label := p.title.String(name)
	stamp := now.Format("15:04:05.000")
	if p.colorize {
		label = ansiBlue + label + ansiReset
		stamp = ansiDim + stamp + ansiReset
	}
	var b strings.Builder
	b.WriteString(stamp)
	b.WriteByte(' ')
	b.WriteString(label)
	for _, key := range slices.Sorted(maps.Keys(data)) {
		fmt.Fprintf(&b, " %s=%s", key, formatField(data[key]))
	}
	b.WriteByte('\n')
	_, err := io.WriteString(p.out, b.String())
	return err
}

func formatField(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		if v == "" || strings.ContainsAny(v, " \t\"=") {
			return fmt.Sprintf("%q", v)
		}
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}
