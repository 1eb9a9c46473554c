package testsupport

import (
	"path/filepath"
	"testing"

	"hyprwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config with short timeouts and per-test directories.
// It applies any provided options after the defaults.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Hyprland.Signature = Signature
	cfgVal.IPC.ConnectTimeoutMS = 500
	cfgVal.IPC.CommandTimeoutMS = 1000
	cfgVal.Watch.PollIntervalMS = 10
	cfgVal.Watch.LockDir = filepath.Join(base, "locks")
	cfgVal.Metrics.Listen = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCompositor points the config at a fake compositor's sockets.
func WithCompositor(c *Compositor) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Hyprland.SocketDir = c.Dir()
	}
}

// WithCacheTTL enables the query cache.
func WithCacheTTL(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.TTLMS = ms
	}
}

// WithMetrics enables Prometheus collection.
func WithMetrics() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Watch.LockDir)
}
