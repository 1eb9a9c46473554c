package hyprland

import (
	"bytes"
	"context"
	"fmt"

	"hyprwatch/internal/models"
)

func (i *Instance) query(ctx context.Context, name string) ([]byte, error) {
	request := "j/" + name
	if reply, ok := i.cache.get(request); ok {
		return reply, nil
	}
	generation := i.cache.begin()
	reply, err := i.commands.SendJSON(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	i.cache.set(request, reply, generation)
	return reply, nil
}

// Windows returns every client window.
func (i *Instance) Windows(ctx context.Context) ([]models.Window, error) {
	reply, err := i.query(ctx, "clients")
	if err != nil {
		return nil, err
	}
	return models.ParseWindows(reply)
}

// WindowByAddress returns the window with the given address. Both the "0x"
// form used by queries and the bare form used by events are accepted.
func (i *Instance) WindowByAddress(ctx context.Context, address string) (models.Window, error) {
	windows, err := i.Windows(ctx)
	if err != nil {
		return models.Window{}, err
	}
	for _, w := range windows {
		if models.SameAddress(w.Address, address) {
			return w, nil
		}
	}
	return models.Window{}, fmt.Errorf("window %s: %w", address, ErrNotFound)
}

// ActiveWindow returns the focused window, or ErrNotFound when nothing has
// focus.
func (i *Instance) ActiveWindow(ctx context.Context) (models.Window, error) {
	reply, err := i.query(ctx, "activewindow")
	if err != nil {
		return models.Window{}, err
	}
	if isEmptyObject(reply) {
		return models.Window{}, fmt.Errorf("active window: %w", ErrNotFound)
	}
	return models.ParseWindow(reply)
}

// Workspaces returns every workspace, special ones included.
func (i *Instance) Workspaces(ctx context.Context) ([]models.Workspace, error) {
	reply, err := i.query(ctx, "workspaces")
	if err != nil {
		return nil, err
	}
	return models.ParseWorkspaces(reply)
}

// WorkspaceByID returns the workspace with the given id.
func (i *Instance) WorkspaceByID(ctx context.Context, id int) (models.Workspace, error) {
	workspaces, err := i.Workspaces(ctx)
	if err != nil {
		return models.Workspace{}, err
	}
	for _, ws := range workspaces {
		if ws.ID == id {
			return ws, nil
		}
	}
	return models.Workspace{}, fmt.Errorf("workspace %d: %w", id, ErrNotFound)
}

// WorkspaceByName returns the workspace with the given name.
func (i *Instance) WorkspaceByName(ctx context.Context, name string) (models.Workspace, error) {
	workspaces, err := i.Workspaces(ctx)
	if err != nil {
		return models.Workspace{}, err
	}
	for _, ws := range workspaces {
		if ws.Name == name {
			return ws, nil
		}
	}
	return models.Workspace{}, fmt.Errorf("workspace %q: %w", name, ErrNotFound)
}

// ActiveWorkspace returns the workspace on the focused monitor.
func (i *Instance) ActiveWorkspace(ctx context.Context) (models.Workspace, error) {
	reply, err := i.query(ctx, "activeworkspace")
	if err != nil {
		return models.Workspace{}, err
	}
	if isEmptyObject(reply) {
		return models.Workspace{}, fmt.Errorf("active workspace: %w", ErrNotFound)
	}
	return models.ParseWorkspace(reply)
}

// Monitors returns every enabled monitor.
func (i *Instance) Monitors(ctx context.Context) ([]models.Monitor, error) {
	reply, err := i.query(ctx, "monitors")
	if err != nil {
		return nil, err
	}
	return models.ParseMonitors(reply)
}

// MonitorByID returns the monitor with the given id.
func (i *Instance) MonitorByID(ctx context.Context, id int) (models.Monitor, error) {
	monitors, err := i.Monitors(ctx)
	if err != nil {
		return models.Monitor{}, err
	}
	for _, m := range monitors {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Monitor{}, fmt.Errorf("monitor %d: %w", id, ErrNotFound)
}

// MonitorByName returns the monitor with the given connector name.
func (i *Instance) MonitorByName(ctx context.Context, name string) (models.Monitor, error) {
	monitors, err := i.Monitors(ctx)
	if err != nil {
		return models.Monitor{}, err
	}
	for _, m := range monitors {
		if m.Name == name {
			return m, nil
		}
	}
	return models.Monitor{}, fmt.Errorf("monitor %q: %w", name, ErrNotFound)
}

// FocusedMonitor returns the monitor that has keyboard focus.
func (i *Instance) FocusedMonitor(ctx context.Context) (models.Monitor, error) {
	monitors, err := i.Monitors(ctx)
	if err != nil {
		return models.Monitor{}, err
	}
	for _, m := range monitors {
		if m.Focused {
			return m, nil
		}
	}
	return models.Monitor{}, fmt.Errorf("focused monitor: %w", ErrNotFound)
}

func isEmptyObject(reply []byte) bool {
	trimmed := bytes.TrimSpace(reply)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("{}"))
}
