// Package config loads, normalizes, and validates hyprwatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts) and reads TOML files. Socket timeouts, the watch loop poll
// interval, the query cache lifetime, metrics exposure and log output are all
// resolved in one pass so the CLI and the instance facade see the same values.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
