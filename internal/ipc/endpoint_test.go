package ipc_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hyprwatch/internal/ipc"
)

func envLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestDiscoveryRequiresSignature(t *testing.T) {
	_, err := ipc.Discovery{Lookup: envLookup(nil)}.Endpoint()
	if !errors.Is(err, ipc.ErrEnvironment) {
		t.Fatalf("expected ErrEnvironment, got %v", err)
	}
}

func TestDiscoveryRejectsPathLikeSignature(t *testing.T) {
	_, err := ipc.Discovery{Lookup: envLookup(map[string]string{ipc.SignatureEnv: "../../etc"})}.Endpoint()
	if !errors.Is(err, ipc.ErrEnvironment) {
		t.Fatalf("expected ErrEnvironment, got %v", err)
	}
}

func TestDiscoveryPrefersRuntimeDir(t *testing.T) {
	runtime := t.TempDir()
	dir := filepath.Join(runtime, "hypr", "abc")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	ep, err := ipc.Discovery{Lookup: envLookup(map[string]string{
		ipc.SignatureEnv:  "abc",
		ipc.RuntimeDirEnv: runtime,
	})}.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint returned error: %v", err)
	}
	if ep.CommandPath != filepath.Join(dir, ".socket.sock") {
		t.Fatalf("unexpected command path %q", ep.CommandPath)
	}
	if ep.EventPath != filepath.Join(dir, ".socket2.sock") {
		t.Fatalf("unexpected event path %q", ep.EventPath)
	}
	if ep.Signature != "abc" || ep.String() != "abc" {
		t.Fatalf("unexpected signature %q", ep.Signature)
	}
}

func TestDiscoveryFallsBackToLegacyDir(t *testing.T) {
	ep, err := ipc.Discovery{Lookup: envLookup(map[string]string{ipc.SignatureEnv: "nosuchsig"})}.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint returned error: %v", err)
	}
	if ep.Dir() != "/tmp/hypr/nosuchsig" {
		t.Fatalf("unexpected socket dir %q", ep.Dir())
	}
}

func TestDiscoverySignatureOverride(t *testing.T) {
	runtime := t.TempDir()
	ep, err := ipc.Discovery{
		Signature: "override",
		Lookup: envLookup(map[string]string{
			ipc.SignatureEnv:  "fromenv",
			ipc.RuntimeDirEnv: runtime,
		}),
	}.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint returned error: %v", err)
	}
	if ep.Dir() != filepath.Join(runtime, "hypr", "override") {
		t.Fatalf("unexpected socket dir %q", ep.Dir())
	}
}

func TestDiscoverySocketDirOverride(t *testing.T) {
	dir := t.TempDir()
	ep, err := ipc.Discovery{SocketDir: dir, Lookup: envLookup(nil)}.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint returned error: %v", err)
	}
	if ep.Dir() != dir || ep.String() != dir {
		t.Fatalf("unexpected endpoint %+v", ep)
	}
}

func TestEndpointValidate(t *testing.T) {
	if err := (ipc.Endpoint{CommandPath: "/a"}).Validate(); !errors.Is(err, ipc.ErrEnvironment) {
		t.Fatalf("expected ErrEnvironment, got %v", err)
	}
	if _, err := ipc.NewEndpoint("sig", ""); !errors.Is(err, ipc.ErrEnvironment) {
		t.Fatalf("expected ErrEnvironment for empty dir, got %v", err)
	}
}
