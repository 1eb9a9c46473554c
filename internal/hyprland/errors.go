package hyprland

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports that no window, workspace or monitor matched.
	ErrNotFound = errors.New("hyprland object not found")
	// ErrParentNotFound reports that a related object (a window's workspace,
	// a workspace's monitor) is no longer known to the compositor.
	ErrParentNotFound = errors.New("related hyprland object not found")
	// ErrWatching is returned by Watch while another watch is running on the
	// same instance.
	ErrWatching = errors.New("instance is already watching events")
)

// DispatchError carries the compositor's reply to a dispatch it rejected.
type DispatchError struct {
	Args  []string
	Reply string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %s", strings.Join(e.Args, " "), e.Reply)
}
