package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateHyprland(); err != nil {
		return err
	}
	if err := c.validateIPC(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateHyprland() error {
	if strings.ContainsAny(c.Hyprland.Signature, `/\`) {
		return fmt.Errorf("hyprland.signature %q must not contain path separators", c.Hyprland.Signature)
	}
	return nil
}

func (c *Config) validateIPC() error {
	if c.IPC.ConnectTimeoutMS < 0 {
		return errors.New("ipc.connect_timeout_ms must be positive")
	}
	if c.IPC.CommandTimeoutMS < 0 {
		return errors.New("ipc.command_timeout_ms must be positive")
	}
	if c.IPC.ReadBufferBytes < 512 {
		return fmt.Errorf("ipc.read_buffer_bytes must be at least 512, got %d", c.IPC.ReadBufferBytes)
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.PollIntervalMS < 1 || c.Watch.PollIntervalMS > 60000 {
		return fmt.Errorf("watch.poll_interval_ms must be between 1 and 60000, got %d", c.Watch.PollIntervalMS)
	}
	if c.Watch.ParseWarningsPerSecond < 0 {
		return errors.New("watch.parse_warnings_per_second must be zero or positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.TTLMS < 0 {
		return errors.New("cache.ttl_ms must be zero or positive")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if !c.Metrics.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
		return fmt.Errorf("metrics.listen %q: %w", c.Metrics.Listen, err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
