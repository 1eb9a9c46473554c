package models

import (
	"encoding/json"
	"fmt"
)

// ParseWindows decodes and validates a "j/clients" reply.
func ParseWindows(data []byte) ([]Window, error) {
	return parseList[Window](data, "window")
}

// ParseWindow decodes and validates a single window record such as the
// "j/activewindow" reply.
func ParseWindow(data []byte) (Window, error) {
	return parseOne[Window](data, "window")
}

// ParseWorkspaces decodes and validates a "j/workspaces" reply.
func ParseWorkspaces(data []byte) ([]Workspace, error) {
	return parseList[Workspace](data, "workspace")
}

// ParseWorkspace decodes and validates a single workspace record.
func ParseWorkspace(data []byte) (Workspace, error) {
	return parseOne[Workspace](data, "workspace")
}

// ParseMonitors decodes and validates a "j/monitors" reply.
func ParseMonitors(data []byte) ([]Monitor, error) {
	return parseList[Monitor](data, "monitor")
}

func parseList[T any](data []byte, kind string) ([]T, error) {
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", kind, err)
	}
	for i := range records {
		if err := check(kind, i, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func parseOne[T any](data []byte, kind string) (T, error) {
	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("decode %s: %w", kind, err)
	}
	if err := check(kind, -1, &record); err != nil {
		return record, err
	}
	return record, nil
}
