package events

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"hyprwatch/internal/ipc"
	"hyprwatch/internal/signals"
)

// ParseFunc turns the payload of one event into named data.
type ParseFunc func(payload string) (signals.Data, error)

// Catalog maps event names to payload parsers. The zero value is not usable;
// build one with NewCatalog.
type Catalog struct {
	mu      sync.RWMutex
	parsers map[string]ParseFunc
}

// NewCatalog returns a catalog holding a parser for every known Hyprland
// event.
func NewCatalog() *Catalog {
	parsers := make(map[string]ParseFunc, len(builtin))
	for name, fn := range builtin {
		parsers[name] = fn
	}
	return &Catalog{parsers: parsers}
}

// Register installs or replaces the parser for name.
func (c *Catalog) Register(name string, fn ParseFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parsers[name] = fn
}

// Known reports whether name has a parser.
func (c *Catalog) Known(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.parsers[name]
	return ok
}

// Names returns every event name with a parser, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.parsers))
	for name := range c.parsers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Interpret converts a raw event into signal data. Events without a parser
// pass through with their raw fields under KeyFields. A payload that does not
// match the event's shape yields a *ipc.ParseError.
func (c *Catalog) Interpret(ev ipc.RawEvent) (signals.Data, error) {
	c.mu.RLock()
	fn, ok := c.parsers[ev.Name]
	c.mu.RUnlock()
	if !ok {
		return signals.Data{KeyFields: slices.Clone(ev.Fields)}, nil
	}
	data, err := fn(ev.Payload())
	if err != nil {
		return nil, &ipc.ParseError{Frame: ev.String(), Reason: "interpret " + ev.Name, Err: err}
	}
	return data, nil
}

var builtin = map[string]ParseFunc{
	ActiveLayout: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 2)
		if err != nil {
			return nil, err
		}
		return signals.Data{KeyKeyboardName: parts[0], KeyLayoutName: parts[1]}, nil
	},
	ActiveSpecial: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 2)
		if err != nil {
			return nil, err
		}
		return signals.Data{KeyWorkspaceName: optional(parts[0]), KeyMonitorName: parts[1]}, nil
	},
	ActiveSpecialV2: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 3)
		if err != nil {
			return nil, err
		}
		var id any
		if parts[0] != "" {
			n, err := atoi(KeyWorkspaceID, parts[0])
			if err != nil {
				return nil, err
			}
			id = n
		}
		return signals.Data{
			KeyWorkspaceID:   id,
			KeyWorkspaceName: optional(parts[1]),
			KeyMonitorName:   parts[2],
		}, nil
	},
	ActiveWindow: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 2)
		if err != nil {
			return nil, err
		}
		return signals.Data{KeyWindowClass: parts[0], KeyWindowTitle: parts[1]}, nil
	},
	ActiveWindowV2: func(p string) (signals.Data, error) {
		// An empty or "," payload means no window has focus.
		if p == "" || p == "," {
			return signals.Data{KeyWindowAddress: nil}, nil
		}
		return signals.Data{KeyWindowAddress: p}, nil
	},
	ChangeFloatingMode: func(p string) (signals.Data, error) {
		return addressAndFlag(p, KeyIsFloating)
	},
	CloseLayer:  single(KeyNamespace),
	CloseWindow: single(KeyWindowAddress),
	ConfigReloaded: func(string) (signals.Data, error) {
		return signals.Data{}, nil
	},
	CreateWorkspace:    single(KeyWorkspaceName),
	CreateWorkspaceV2:  idAndName,
	DestroyWorkspace:   single(KeyWorkspaceName),
	DestroyWorkspaceV2: idAndName,
	FocusedMon: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 2)
		if err != nil {
			return nil, err
		}
		return signals.Data{KeyMonitorName: parts[0], KeyWorkspaceName: parts[1]}, nil
	},
	FocusedMonV2: func(p string) (signals.Data, error) {
		name, rawID, err := rsplit(p)
		if err != nil {
			return nil, err
		}
		id, err := atoi(KeyWorkspaceID, rawID)
		if err != nil {
			return nil, err
		}
		return signals.Data{KeyMonitorName: name, KeyWorkspaceID: id}, nil
	},
	Fullscreen:      flagOnly(KeyIsFullscreen),
	IgnoreGroupLock: flagOnly(KeyIgnoreGroupLockEnabled),
	LockGroups:      flagOnly(KeyLockGroupsEnabled),
	MonitorAdded:    single(KeyMonitorName),
	MonitorAddedV2: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 3)
		if err != nil {
			return nil, err
		}
		id, err := atoi(KeyMonitorID, parts[0])
		if err != nil {
			return nil, err
		}
		return signals.Data{
			KeyMonitorID:          id,
			KeyMonitorName:        parts[1],
			KeyMonitorDescription: parts[2],
		}, nil
	},
	MonitorRemoved: single(KeyMonitorName),
	MoveIntoGroup:  single(KeyWindowAddress),
	MoveOutOfGroup: single(KeyWindowAddress),
	MoveWindow: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 2)
		if err != nil {
			return nil, err
		}
		return signals.Data{KeyWindowAddress: parts[0], KeyWorkspaceName: parts[1]}, nil
	},
	MoveWindowV2: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 2)
		if err != nil {
			return nil, err
		}
		name, rawID, err := rsplit(parts[1])
		if err != nil {
			return nil, err
		}
		id, err := atoi(KeyWorkspaceID, rawID)
		if err != nil {
			return nil, err
		}
		return signals.Data{
			KeyWindowAddress: parts[0],
			KeyWorkspaceName: name,
			KeyWorkspaceID:   id,
		}, nil
	},
	MoveWorkspace: func(p string) (signals.Data, error) {
		name, monitor, err := rsplit(p)
		if err != nil {
			return nil, err
		}
		return signals.Data{KeyWorkspaceName: name, KeyMonitorName: monitor}, nil
	},
	MoveWorkspaceV2: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 2)
		if err != nil {
			return nil, err
		}
		id, err := atoi(KeyWorkspaceID, parts[0])
		if err != nil {
			return nil, err
		}
		name, monitor, err := rsplit(parts[1])
		if err != nil {
			return nil, err
		}
		return signals.Data{
			KeyWorkspaceID:   id,
			KeyWorkspaceName: name,
			KeyMonitorName:   monitor,
		}, nil
	},
	OpenLayer: single(KeyNamespace),
	OpenWindow: func(p string) (signals.Data, error) {
		// The title is last and may itself contain commas.
		parts, err := splitN(p, 4)
		if err != nil {
			return nil, err
		}
		return signals.Data{
			KeyWindowAddress: parts[0],
			KeyWorkspaceName: parts[1],
			KeyWindowClass:   parts[2],
			KeyWindowTitle:   parts[3],
		}, nil
	},
	Pin: func(p string) (signals.Data, error) {
		return addressAndFlag(p, KeyIsPinned)
	},
	RenameWorkspace: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 2)
		if err != nil {
			return nil, err
		}
		id, err := atoi(KeyWorkspaceID, parts[0])
		if err != nil {
			return nil, err
		}
		return signals.Data{KeyWorkspaceID: id, KeyNewName: parts[1]}, nil
	},
	Screencast: func(p string) (signals.Data, error) {
		parts, err := splitExact(p, 2)
		if err != nil {
			return nil, err
		}
		enabled, err := flag(KeyScreencastEnabled, parts[0])
		if err != nil {
			return nil, err
		}
		owner, err := atoi(KeyScreencastType, parts[1])
		if err != nil {
			return nil, err
		}
		kind := ScreencastWindow
		if owner == 0 {
			kind = ScreencastMonitor
		}
		return signals.Data{KeyScreencastEnabled: enabled, KeyScreencastType: kind}, nil
	},
	Submap: func(p string) (signals.Data, error) {
		return signals.Data{KeySubmapName: optional(p)}, nil
	},
	ToggleGroup: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 2)
		if err != nil {
			return nil, err
		}
		active, err := flag(KeyGroupIsActive, parts[0])
		if err != nil {
			return nil, err
		}
		return signals.Data{
			KeyGroupIsActive:   active,
			KeyWindowAddresses: strings.Split(parts[1], ipc.FieldSeparator),
		}, nil
	},
	Urgent:      single(KeyWindowAddress),
	WindowTitle: single(KeyWindowAddress),
	WindowTitleV2: func(p string) (signals.Data, error) {
		parts, err := splitN(p, 2)
		if err != nil {
			return nil, err
		}
		return signals.Data{KeyWindowAddress: parts[0], KeyWindowTitle: parts[1]}, nil
	},
	Workspace: single(KeyWorkspaceName),
	WorkspaceV2: func(p string) (signals.Data, error) {
		name, rawID, err := rsplit(p)
		if err != nil {
			return nil, err
		}
		id, err := atoi(KeyWorkspaceID, rawID)
		if err != nil {
			return nil, err
		}
		return signals.Data{KeyWorkspaceName: name, KeyWorkspaceID: id}, nil
	},
}

var errFieldCount = errors.New("unexpected field count")

func single(key string) ParseFunc {
	return func(p string) (signals.Data, error) {
		return signals.Data{key: p}, nil
	}
}

func flagOnly(key string) ParseFunc {
	return func(p string) (signals.Data, error) {
		value, err := flag(key, p)
		if err != nil {
			return nil, err
		}
		return signals.Data{key: value}, nil
	}
}

func idAndName(p string) (signals.Data, error) {
	parts, err := splitN(p, 2)
	if err != nil {
		return nil, err
	}
	id, err := atoi(KeyWorkspaceID, parts[0])
	if err != nil {
		return nil, err
	}
	return signals.Data{KeyWorkspaceID: id, KeyWorkspaceName: parts[1]}, nil
}

func addressAndFlag(p, key string) (signals.Data, error) {
	parts, err := splitExact(p, 2)
	if err != nil {
		return nil, err
	}
	value, err := flag(key, parts[1])
	if err != nil {
		return nil, err
	}
	return signals.Data{KeyWindowAddress: parts[0], key: value}, nil
}

// splitN splits into exactly n parts; the last part keeps any further
// separators.
func splitN(p string, n int) ([]string, error) {
	parts := strings.SplitN(p, ipc.FieldSeparator, n)
	if len(parts) != n {
		return nil, fmt.Errorf("%w: want %d, got %d", errFieldCount, n, len(parts))
	}
	return parts, nil
}

func splitExact(p string, n int) ([]string, error) {
	parts := strings.Split(p, ipc.FieldSeparator)
	if len(parts) != n {
		return nil, fmt.Errorf("%w: want %d, got %d", errFieldCount, n, len(parts))
	}
	return parts, nil
}

// rsplit splits on the last separator, for payloads whose leading name may
// contain commas.
func rsplit(p string) (string, string, error) {
	idx := strings.LastIndex(p, ipc.FieldSeparator)
	if idx < 0 {
		return "", "", fmt.Errorf("%w: want 2, got 1", errFieldCount)
	}
	return p[:idx], p[idx+1:], nil
}

func atoi(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func flag(key, value string) (bool, error) {
	n, err := atoi(key, value)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// optional maps the empty string to nil.
func optional(value string) any {
	if value == "" {
		return nil
	}
	return value
}
