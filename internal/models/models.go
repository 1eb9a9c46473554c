package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// WorkspaceRef is the short workspace reference embedded in window and
// monitor records.
type WorkspaceRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FullscreenState is the fullscreen mode of a window. Older compositors
// report a boolean, newer ones a mode number.
type FullscreenState int

const (
	FullscreenNone FullscreenState = iota
	FullscreenMaximized
	FullscreenFull
	FullscreenMaximizedFull
)

func (s FullscreenState) String() string {
	switch s {
	case FullscreenNone:
		return "none"
	case FullscreenMaximized:
		return "maximized"
	case FullscreenFull:
		return "fullscreen"
	case FullscreenMaximizedFull:
		return "maximized+fullscreen"
	default:
		return "mode " + strconv.Itoa(int(s))
	}
}

// UnmarshalJSON accepts true, false or an integer mode.
func (s *FullscreenState) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*s = FullscreenFull
		return nil
	case "false", "null":
		*s = FullscreenNone
		return nil
	}
	var mode int
	if err := json.Unmarshal(data, &mode); err != nil {
		return fmt.Errorf("fullscreen: expected bool or integer, got %s", data)
	}
	*s = FullscreenState(mode)
	return nil
}

// Window is one client as reported by "j/clients".
type Window struct {
	Address        string          `json:"address" validate:"required,address"`
	Mapped         bool            `json:"mapped"`
	Hidden         bool            `json:"hidden"`
	At             []int           `json:"at" validate:"len=2"`
	Size           []int           `json:"size" validate:"len=2"`
	Workspace      WorkspaceRef    `json:"workspace"`
	Floating       bool            `json:"floating"`
	MonitorID      int             `json:"monitor"`
	Class          string          `json:"class"`
	Title          string          `json:"title"`
	InitialClass   string          `json:"initialClass"`
	InitialTitle   string          `json:"initialTitle"`
	PID            int             `json:"pid"`
	XWayland       bool            `json:"xwayland"`
	Pinned         bool            `json:"pinned"`
	Fullscreen     FullscreenState `json:"fullscreen" validate:"gte=0"`
	Grouped        []string        `json:"grouped" validate:"dive,address"`
	Tags           []string        `json:"tags"`
	Swallowing     string          `json:"swallowing"`
	FocusHistoryID int             `json:"focusHistoryID"`
	InhibitingIdle bool            `json:"inhibitingIdle"`
	XDGTag         string          `json:"xdgTag"`
	XDGDescription string          `json:"xdgDescription"`
}

// X returns the horizontal position in layout pixels.
func (w Window) X() int { return w.At[0] }

// Y returns the vertical position in layout pixels.
func (w Window) Y() int { return w.At[1] }

// Width returns the window width in pixels.
func (w Window) Width() int { return w.Size[0] }

// Height returns the window height in pixels.
func (w Window) Height() int { return w.Size[1] }

// AddressValue returns the address as a number so that the "0x" prefixed
// form from queries and the bare form from events compare equal.
func (w Window) AddressValue() uint64 {
	value, _ := ParseAddress(w.Address)
	return value
}

// IsFullscreen reports whether any fullscreen mode is active.
func (w Window) IsFullscreen() bool {
	return w.Fullscreen != FullscreenNone
}

func (w Window) String() string {
	return fmt.Sprintf("Window(address=%s, class=%q, title=%q)", w.Address, w.Class, w.Title)
}

// Workspace is one workspace as reported by "j/workspaces".
type Workspace struct {
	ID              int    `json:"id"`
	Name            string `json:"name" validate:"required"`
	Monitor         string `json:"monitor"`
	MonitorID       int    `json:"monitorID"`
	Windows         int    `json:"windows" validate:"gte=0"`
	HasFullscreen   bool   `json:"hasfullscreen"`
	LastWindow      string `json:"lastwindow" validate:"omitempty,address"`
	LastWindowTitle string `json:"lastwindowtitle"`
}

// IsSpecial reports whether this is a special (scratchpad) workspace.
func (w Workspace) IsSpecial() bool {
	return w.ID < 0 || strings.HasPrefix(w.Name, "special")
}

func (w Workspace) String() string {
	return fmt.Sprintf("Workspace(id=%d, name=%q)", w.ID, w.Name)
}

// Monitor is one output as reported by "j/monitors".
type Monitor struct {
	ID               int          `json:"id"`
	Name             string       `json:"name" validate:"required"`
	Description      string       `json:"description"`
	Make             string       `json:"make"`
	Model            string       `json:"model"`
	Serial           string       `json:"serial"`
	Width            int          `json:"width" validate:"gte=0"`
	Height           int          `json:"height" validate:"gte=0"`
	RefreshRate      float64      `json:"refreshRate" validate:"gte=0"`
	X                int          `json:"x"`
	Y                int          `json:"y"`
	ActiveWorkspace  WorkspaceRef `json:"activeWorkspace"`
	SpecialWorkspace WorkspaceRef `json:"specialWorkspace"`
	Reserved         []int        `json:"reserved"`
	Scale            float64      `json:"scale" validate:"gt=0"`
	Transform        int          `json:"transform" validate:"min=0,max=7"`
	Focused          bool         `json:"focused"`
	DPMSStatus       bool         `json:"dpmsStatus"`
	VRR              bool         `json:"vrr"`
	Disabled         bool         `json:"disabled"`
}

func (m Monitor) String() string {
	return fmt.Sprintf("Monitor(id=%d, name=%q, %dx%d)", m.ID, m.Name, m.Width, m.Height)
}

// ParseAddress converts a window address in either form to a number.
func ParseAddress(address string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")
	value, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse window address %q: %w", address, err)
	}
	return value, nil
}

// SameAddress reports whether two addresses name the same window.
func SameAddress(a, b string) bool {
	av, errA := ParseAddress(a)
	bv, errB := ParseAddress(b)
	return errA == nil && errB == nil && av == bv
}
