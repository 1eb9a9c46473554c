// Package hyprland is the facade over one running Hyprland compositor.
//
// An Instance answers typed queries (windows, workspaces, monitors and the
// relations between them) over the command socket, sends dispatches, and
// delivers compositor events to subscribers through a watch loop. Query
// replies may be cached for a short TTL; the cache is flushed on every event
// and after every dispatch.
package hyprland
