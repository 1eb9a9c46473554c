package ipc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WaitForSockets blocks until both sockets of ep exist or ctx ends. It lets
// session scripts start before the compositor has created its runtime
// directory.
func WaitForSockets(ctx context.Context, ep Endpoint) error {
	if err := ep.Validate(); err != nil {
		return err
	}
	if socketsPresent(ep) {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create socket watcher: %w", err)
	}
	defer watcher.Close()

	dir := ep.Dir()
	watchedDir := false
	if err := watcher.Add(dir); err == nil {
		watchedDir = true
	}
	parent := filepath.Dir(dir)
	if !watchedDir {
		if err := watcher.Add(parent); err != nil {
			return fmt.Errorf("%w: watch %s: %w", ErrConnection, parent, err)
		}
	}

	for {
		if socketsPresent(ep) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for sockets in %s: %w", dir, ctx.Err())
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("%w: socket watcher stopped", ErrConnection)
			}
			if !watchedDir && event.Name == dir && event.Has(fsnotify.Create) {
				if err := watcher.Add(dir); err == nil {
					watchedDir = true
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("%w: socket watcher stopped", ErrConnection)
			}
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
}

func socketsPresent(ep Endpoint) bool {
	return isSocket(ep.CommandPath) && isSocket(ep.EventPath)
}

func isSocket(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode()&os.ModeSocket != 0
}
