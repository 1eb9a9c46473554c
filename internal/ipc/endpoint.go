package ipc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SignatureEnv names the variable Hyprland exports to its children.
	SignatureEnv = "HYPRLAND_INSTANCE_SIGNATURE"
	// RuntimeDirEnv is consulted for the socket directory on current Hyprland releases.
	RuntimeDirEnv = "XDG_RUNTIME_DIR"

	commandSocketName = ".socket.sock"
	eventSocketName   = ".socket2.sock"
	legacySocketRoot  = "/tmp/hypr"
)

// Endpoint is the pair of socket paths belonging to one compositor instance.
// It is a value type and is never mutated after discovery.
type Endpoint struct {
	Signature   string
	CommandPath string
	EventPath   string
}

// NewEndpoint builds an Endpoint from a socket directory.
func NewEndpoint(signature, dir string) (Endpoint, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return Endpoint{}, fmt.Errorf("%w: socket directory is empty", ErrEnvironment)
	}
	ep := Endpoint{
		Signature:   strings.TrimSpace(signature),
		CommandPath: filepath.Join(dir, commandSocketName),
		EventPath:   filepath.Join(dir, eventSocketName),
	}
	if err := ep.Validate(); err != nil {
		return Endpoint{}, err
	}
	return ep, nil
}

// Validate reports ErrEnvironment unless both socket paths are set.
func (e Endpoint) Validate() error {
	if strings.TrimSpace(e.CommandPath) == "" {
		return fmt.Errorf("%w: command socket path is empty", ErrEnvironment)
	}
	if strings.TrimSpace(e.EventPath) == "" {
		return fmt.Errorf("%w: event socket path is empty", ErrEnvironment)
	}
	return nil
}

// Dir returns the directory holding both sockets.
func (e Endpoint) Dir() string {
	return filepath.Dir(e.CommandPath)
}

func (e Endpoint) String() string {
	if e.Signature == "" {
		return e.Dir()
	}
	return e.Signature
}

// Discovery derives an Endpoint from the environment. Zero values fall back to
// the process environment.
type Discovery struct {
	// Signature overrides HYPRLAND_INSTANCE_SIGNATURE.
	Signature string
	// SocketDir bypasses signature based lookup entirely.
	SocketDir string
	// Lookup replaces os.LookupEnv, mainly for tests.
	Lookup func(string) (string, bool)
}

// Endpoint resolves the socket paths. The directory under XDG_RUNTIME_DIR is
// preferred when it exists; otherwise the legacy /tmp/hypr location is used.
// No socket is opened here.
func (d Discovery) Endpoint() (Endpoint, error) {
	lookup := d.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	signature := strings.TrimSpace(d.Signature)
	if signature == "" {
		if value, ok := lookup(SignatureEnv); ok {
			signature = strings.TrimSpace(value)
		}
	}

	if dir := strings.TrimSpace(d.SocketDir); dir != "" {
		return NewEndpoint(signature, dir)
	}

	if signature == "" {
		return Endpoint{}, fmt.Errorf("%w: %s is not set; is Hyprland running?", ErrEnvironment, SignatureEnv)
	}
	if strings.ContainsAny(signature, `/\`) {
		return Endpoint{}, fmt.Errorf("%w: invalid instance signature %q", ErrEnvironment, signature)
	}

	candidates := make([]string, 0, 2)
	if runtimeDir, ok := lookup(RuntimeDirEnv); ok && strings.TrimSpace(runtimeDir) != "" {
		candidates = append(candidates, filepath.Join(strings.TrimSpace(runtimeDir), "hypr", signature))
	}
	candidates = append(candidates, filepath.Join(legacySocketRoot, signature))

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return NewEndpoint(signature, dir)
		}
	}
	return NewEndpoint(signature, candidates[0])
}
