package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Hyprland selects the compositor instance to talk to.
type Hyprland struct {
	// Signature overrides HYPRLAND_INSTANCE_SIGNATURE when set.
	Signature string `toml:"signature"`
	// SocketDir bypasses signature lookup and points straight at the
	// directory holding .socket.sock and .socket2.sock.
	SocketDir string `toml:"socket_dir"`
}

// IPC contains socket timeouts and buffer sizes.
type IPC struct {
	ConnectTimeoutMS int `toml:"connect_timeout_ms"`
	CommandTimeoutMS int `toml:"command_timeout_ms"`
	ReadBufferBytes  int `toml:"read_buffer_bytes"`
}

// Watch contains event loop settings.
type Watch struct {
	PollIntervalMS         int     `toml:"poll_interval_ms"`
	ParseWarningsPerSecond float64 `toml:"parse_warnings_per_second"`
	LockDir                string  `toml:"lock_dir"`
}

// Cache controls the query cache kept by the instance facade. A zero TTL
// disables caching.
type Cache struct {
	TTLMS int `toml:"ttl_ms"`
}

// Metrics controls the Prometheus collector and its HTTP endpoint.
type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for hyprwatch.
//
// Configuration sections by subsystem:
//   - Hyprland: instance signature and socket directory overrides
//   - IPC: connect/command timeouts and read buffer size
//   - Watch: poll interval, parse warning rate and lock directory
//   - Cache: query cache lifetime
//   - Metrics: Prometheus collection and listen address
//   - Logging: log format, level and optional file
type Config struct {
	Hyprland Hyprland `toml:"hyprland"`
	IPC      IPC      `toml:"ipc"`
	Watch    Watch    `toml:"watch"`
	Cache    Cache    `toml:"cache"`
	Metrics  Metrics  `toml:"metrics"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ConnectTimeout returns the socket dial bound.
func (c *Config) ConnectTimeout() time.Duration {
	return millis(c.IPC.ConnectTimeoutMS)
}

// CommandTimeout returns the bound for one command round trip.
func (c *Config) CommandTimeout() time.Duration {
	return millis(c.IPC.CommandTimeoutMS)
}

// PollInterval returns how long the watch loop blocks per readiness check.
func (c *Config) PollInterval() time.Duration {
	return millis(c.Watch.PollIntervalMS)
}

// CacheTTL returns the query cache lifetime; zero means disabled.
func (c *Config) CacheTTL() time.Duration {
	return millis(c.Cache.TTLMS)
}

func millis(value int) time.Duration {
	return time.Duration(value) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultLockDir() string {
	if base, ok := os.LookupEnv("XDG_RUNTIME_DIR"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "hyprwatch")
	}
	return filepath.Join(os.TempDir(), "hyprwatch")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
