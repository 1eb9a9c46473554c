package hyprland

import (
	"context"
	"errors"
	"fmt"

	"hyprwatch/internal/models"
)

// WindowWorkspace returns the workspace holding w.
func (i *Instance) WindowWorkspace(ctx context.Context, w models.Window) (models.Workspace, error) {
	ws, err := i.WorkspaceByID(ctx, w.Workspace.ID)
	if errors.Is(err, ErrNotFound) {
		return models.Workspace{}, fmt.Errorf("workspace %d of window %s: %w", w.Workspace.ID, w.Address, ErrParentNotFound)
	}
	return ws, err
}

// WindowMonitor returns the monitor showing w.
func (i *Instance) WindowMonitor(ctx context.Context, w models.Window) (models.Monitor, error) {
	m, err := i.MonitorByID(ctx, w.MonitorID)
	if errors.Is(err, ErrNotFound) {
		return models.Monitor{}, fmt.Errorf("monitor %d of window %s: %w", w.MonitorID, w.Address, ErrParentNotFound)
	}
	return m, err
}

// WorkspaceMonitor returns the monitor ws is placed on.
func (i *Instance) WorkspaceMonitor(ctx context.Context, ws models.Workspace) (models.Monitor, error) {
	m, err := i.MonitorByID(ctx, ws.MonitorID)
	if errors.Is(err, ErrNotFound) {
		return models.Monitor{}, fmt.Errorf("monitor %d of workspace %q: %w", ws.MonitorID, ws.Name, ErrParentNotFound)
	}
	return m, err
}

// WorkspaceWindows returns the windows on ws in compositor order.
func (i *Instance) WorkspaceWindows(ctx context.Context, ws models.Workspace) ([]models.Window, error) {
	windows, err := i.Windows(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Window
	for _, w := range windows {
		if w.Workspace.ID == ws.ID {
			out = append(out, w)
		}
	}
	return out, nil
}

// MonitorWorkspaces returns the workspaces placed on m, special ones
// included.
func (i *Instance) MonitorWorkspaces(ctx context.Context, m models.Monitor) ([]models.Workspace, error) {
	workspaces, err := i.Workspaces(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Workspace
	for _, ws := range workspaces {
		if ws.MonitorID == m.ID {
			out = append(out, ws)
		}
	}
	return out, nil
}
