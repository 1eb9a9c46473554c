package config

const (
	defaultConfigPath             = "~/.config/hyprwatch/config.toml"
	projectConfigName             = "hyprwatch.toml"
	defaultConnectTimeoutMS       = 2000
	defaultCommandTimeoutMS       = 5000
	defaultReadBufferBytes        = 8192
	defaultPollIntervalMS         = 250
	defaultParseWarningsPerSecond = 1.0
	defaultCacheTTLMS             = 0
	defaultMetricsListen          = "127.0.0.1:9137"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		IPC: IPC{
			ConnectTimeoutMS: defaultConnectTimeoutMS,
			CommandTimeoutMS: defaultCommandTimeoutMS,
			ReadBufferBytes:  defaultReadBufferBytes,
		},
		Watch: Watch{
			PollIntervalMS:         defaultPollIntervalMS,
			ParseWarningsPerSecond: defaultParseWarningsPerSecond,
			LockDir:                defaultLockDir(),
		},
		Cache: Cache{
			TTLMS: defaultCacheTTLMS,
		},
		Metrics: Metrics{
			Listen: defaultMetricsListen,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
