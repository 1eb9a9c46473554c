package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"hyprwatch/internal/config"
	"hyprwatch/internal/hyprland"
	"hyprwatch/internal/ipc"
	"hyprwatch/internal/logging"
	"hyprwatch/internal/metrics"
)

type globalFlags struct {
	config    string
	signature string
	socketDir string
	logLevel  string
}

type commandContext struct {
	flags *globalFlags

	configOnce  sync.Once
	config      *config.Config
	configPath  string
	configFound bool
	configErr   error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, found, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if sig := strings.TrimSpace(c.flags.signature); sig != "" {
			cfg.Hyprland.Signature = sig
		}
		if dir := strings.TrimSpace(c.flags.socketDir); dir != "" {
			expanded, err := config.ExpandPath(dir)
			if err != nil {
				c.configErr = fmt.Errorf("resolve --socket-dir: %w", err)
				return
			}
			cfg.Hyprland.SocketDir = expanded
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		c.config = cfg
		c.configPath = path
		c.configFound = found
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) newInstance(m *metrics.Manager) (*hyprland.Instance, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	inst, err := hyprland.NewFromConfig(cfg, logger, m)
	if err != nil {
		return nil, wrapConnectError(err)
	}
	return inst, nil
}

// wrapConnectError turns transport failures into actionable messages.
func wrapConnectError(err error) error {
	switch {
	case errors.Is(err, ipc.ErrEnvironment):
		return fmt.Errorf("%w (is Hyprland running? set HYPRLAND_INSTANCE_SIGNATURE or pass --signature)", err)
	case errors.Is(err, ipc.ErrConnection):
		return fmt.Errorf("%w (check --signature or --socket-dir, or use `hyprwatch watch --wait`)", err)
	case errors.Is(err, ipc.ErrTimeout):
		return fmt.Errorf("%w (raise ipc.command_timeout_ms if the compositor is busy)", err)
	default:
		return err
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
