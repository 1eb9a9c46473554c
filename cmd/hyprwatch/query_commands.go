package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hyprwatch/internal/hyprland"
	"hyprwatch/internal/models"
)

func newWindowsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List client windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := ctx.newInstance(nil)
			if err != nil {
				return err
			}
			windows, err := inst.Windows(cmd.Context())
			if err != nil {
				return wrapConnectError(err)
			}
			if asJSON {
				return writeJSON(cmd, windows)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderWindows(windows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newWorkspacesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "List workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := ctx.newInstance(nil)
			if err != nil {
				return err
			}
			workspaces, err := inst.Workspaces(cmd.Context())
			if err != nil {
				return wrapConnectError(err)
			}
			if asJSON {
				return writeJSON(cmd, workspaces)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderWorkspaces(workspaces))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newMonitorsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "monitors",
		Short: "List monitors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := ctx.newInstance(nil)
			if err != nil {
				return err
			}
			monitors, err := inst.Monitors(cmd.Context())
			if err != nil {
				return wrapConnectError(err)
			}
			if asJSON {
				return writeJSON(cmd, monitors)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderMonitors(monitors))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

type activeState struct {
	Window    *models.Window   `json:"window"`
	Workspace models.Workspace `json:"workspace"`
}

func newActiveCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "active",
		Short: "Show the focused window and workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := ctx.newInstance(nil)
			if err != nil {
				return err
			}
			var state activeState
			state.Workspace, err = inst.ActiveWorkspace(cmd.Context())
			if err != nil {
				return wrapConnectError(err)
			}
			window, err := inst.ActiveWindow(cmd.Context())
			switch {
			case err == nil:
				state.Window = &window
			case errors.Is(err, hyprland.ErrNotFound):
			default:
				return wrapConnectError(err)
			}

			if asJSON {
				return writeJSON(cmd, state)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Workspace: %s (id %d) on %s\n", state.Workspace.Name, state.Workspace.ID, state.Workspace.Monitor)
			if state.Window == nil {
				fmt.Fprintln(out, "Window:    none")
				return nil
			}
			fmt.Fprintf(out, "Window:    %s %s %q\n", state.Window.Address, state.Window.Class, state.Window.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newQueryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "query <request>...",
		Short: "Send a raw request to the command socket and print the reply",
		Long: "Send a raw request exactly as hyprctl would, for example\n" +
			"  hyprwatch query j/version\n" +
			"  hyprwatch query /keyword general:gaps_in 4",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := ctx.newInstance(nil)
			if err != nil {
				return err
			}
			reply, err := inst.RawCommand(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return wrapConnectError(err)
			}
			out := cmd.OutOrStdout()
			_, _ = out.Write(reply)
			if len(reply) > 0 && reply[len(reply)-1] != '\n' {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newDispatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <dispatcher> [args...]",
		Short: "Run a compositor dispatcher",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := ctx.newInstance(nil)
			if err != nil {
				return err
			}
			if err := inst.Dispatch(cmd.Context(), args...); err != nil {
				return wrapConnectError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func renderWindows(windows []models.Window) string {
	columns := []column{
		{header: "Address"},
		{header: "Workspace", align: alignRight},
		{header: "Monitor", align: alignRight},
		{header: "Class"},
		{header: "Title"},
		{header: "State"},
	}
	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		rows = append(rows, []string{
			w.Address,
			w.Workspace.Name,
			strconv.Itoa(w.MonitorID),
			w.Class,
			w.Title,
			windowState(w),
		})
	}
	return renderTable(columns, rows)
}

func windowState(w models.Window) string {
	var parts []string
	if w.Floating {
		parts = append(parts, "floating")
	}
	if w.Pinned {
		parts = append(parts, "pinned")
	}
	if w.IsFullscreen() {
		parts = append(parts, w.Fullscreen.String())
	}
	if len(w.Grouped) > 0 {
		parts = append(parts, "grouped")
	}
	if w.Hidden {
		parts = append(parts, "hidden")
	}
	if len(parts) == 0 {
		return "tiled"
	}
	return strings.Join(parts, ",")
}

func renderWorkspaces(workspaces []models.Workspace) string {
	columns := []column{
		{header: "ID", align: alignRight},
		{header: "Name"},
		{header: "Monitor"},
		{header: "Windows", align: alignRight},
		{header: "Fullscreen"},
		{header: "Last Window"},
	}
	rows := make([][]string, 0, len(workspaces))
	for _, ws := range workspaces {
		rows = append(rows, []string{
			strconv.Itoa(ws.ID),
			ws.Name,
			ws.Monitor,
			strconv.Itoa(ws.Windows),
			yesNo(ws.HasFullscreen),
			ws.LastWindowTitle,
		})
	}
	return renderTable(columns, rows)
}

func renderMonitors(monitors []models.Monitor) string {
	columns := []column{
		{header: "ID", align: alignRight},
		{header: "Name"},
		{header: "Mode"},
		{header: "Position"},
		{header: "Scale", align: alignRight},
		{header: "Workspace"},
		{header: "Focused"},
	}
	rows := make([][]string, 0, len(monitors))
	for _, m := range monitors {
		rows = append(rows, []string{
			strconv.Itoa(m.ID),
			m.Name,
			fmt.Sprintf("%dx%d@%.2f", m.Width, m.Height, m.RefreshRate),
			fmt.Sprintf("%d,%d", m.X, m.Y),
			strconv.FormatFloat(m.Scale, 'f', -1, 64),
			m.ActiveWorkspace.Name,
			yesNo(m.Focused),
		})
	}
	return renderTable(columns, rows)
}
