package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeHyprland(); err != nil {
		return err
	}
	c.normalizeIPC()
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	c.normalizeMetrics()
	return c.normalizeLogging()
}

func (c *Config) normalizeHyprland() error {
	c.Hyprland.Signature = strings.TrimSpace(c.Hyprland.Signature)
	c.Hyprland.SocketDir = strings.TrimSpace(c.Hyprland.SocketDir)
	if c.Hyprland.SocketDir == "" {
		return nil
	}
	var err error
	if c.Hyprland.SocketDir, err = expandPath(c.Hyprland.SocketDir); err != nil {
		return fmt.Errorf("hyprland.socket_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIPC() {
	if c.IPC.ConnectTimeoutMS == 0 {
		c.IPC.ConnectTimeoutMS = defaultConnectTimeoutMS
	}
	if c.IPC.CommandTimeoutMS == 0 {
		c.IPC.CommandTimeoutMS = defaultCommandTimeoutMS
	}
	if c.IPC.ReadBufferBytes == 0 {
		c.IPC.ReadBufferBytes = defaultReadBufferBytes
	}
}

func (c *Config) normalizeWatch() error {
	if c.Watch.PollIntervalMS == 0 {
		c.Watch.PollIntervalMS = defaultPollIntervalMS
	}
	if strings.TrimSpace(c.Watch.LockDir) == "" {
		c.Watch.LockDir = defaultLockDir()
	}
	var err error
	if c.Watch.LockDir, err = expandPath(strings.TrimSpace(c.Watch.LockDir)); err != nil {
		return fmt.Errorf("watch.lock_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMetrics() {
	c.Metrics.Listen = strings.TrimSpace(c.Metrics.Listen)
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = defaultMetricsListen
	}
}

func (c *Config) normalizeLogging() error {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	if level == "warning" {
		level = "warn"
	}
	c.Logging.Level = level

	file := strings.TrimSpace(c.Logging.File)
	if file == "" {
		c.Logging.File = ""
		return nil
	}
	var err error
	if c.Logging.File, err = expandPath(file); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
