package models_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyprwatch/internal/models"
	"hyprwatch/internal/testsupport"
)

func TestParseWindowsFixture(t *testing.T) {
	windows, err := models.ParseWindows([]byte(testsupport.ClientsJSON))
	require.NoError(t, err)
	require.Len(t, windows, 2)

	firefox := windows[0]
	assert.Equal(t, testsupport.FirefoxAddress, firefox.Address)
	assert.Equal(t, "firefox", firefox.Class)
	assert.Equal(t, 10, firefox.X())
	assert.Equal(t, 40, firefox.Y())
	assert.Equal(t, 1900, firefox.Width())
	assert.Equal(t, 1030, firefox.Height())
	assert.Equal(t, models.WorkspaceRef{ID: 1, Name: "1"}, firefox.Workspace)
	assert.False(t, firefox.IsFullscreen())

	kitty := windows[1]
	assert.True(t, kitty.Floating)
	assert.True(t, kitty.Pinned)
	assert.Equal(t, 1, kitty.MonitorID)
	assert.Equal(t, models.FullscreenFull, kitty.Fullscreen)
	assert.True(t, kitty.IsFullscreen())
	assert.Equal(t, []string{"term"}, kitty.Tags)
	assert.Equal(t, []string{testsupport.KittyAddress}, kitty.Grouped)
	assert.Equal(t, "nvim, main.go", kitty.Title)
}

func TestParseWindowAcceptsBooleanFullscreen(t *testing.T) {
	window, err := models.ParseWindow([]byte(testsupport.ActiveWindowJSON))
	require.NoError(t, err)
	assert.Equal(t, models.FullscreenNone, window.Fullscreen)

	window, err = models.ParseWindow([]byte(`{"address":"0x1","at":[0,0],"size":[1,1],"fullscreen":true}`))
	require.NoError(t, err)
	assert.Equal(t, models.FullscreenFull, window.Fullscreen)
	assert.Equal(t, "fullscreen", window.Fullscreen.String())
}

func TestParseWindowRejectsBadFullscreen(t *testing.T) {
	_, err := models.ParseWindow([]byte(`{"address":"0x1","at":[0,0],"size":[1,1],"fullscreen":"yes"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fullscreen")
}

func TestParseWorkspacesFixture(t *testing.T) {
	workspaces, err := models.ParseWorkspaces([]byte(testsupport.WorkspacesJSON))
	require.NoError(t, err)
	require.Len(t, workspaces, 3)

	assert.Equal(t, "DP-1", workspaces[0].Monitor)
	assert.False(t, workspaces[0].IsSpecial())
	assert.True(t, workspaces[1].HasFullscreen)
	assert.Equal(t, 1, workspaces[1].MonitorID)
	assert.True(t, workspaces[2].IsSpecial())
	assert.Equal(t, "0x0", workspaces[2].LastWindow)

	active, err := models.ParseWorkspace([]byte(testsupport.ActiveWorkspaceJSON))
	require.NoError(t, err)
	assert.Equal(t, workspaces[0], active)
}

func TestParseMonitorsFixture(t *testing.T) {
	monitors, err := models.ParseMonitors([]byte(testsupport.MonitorsJSON))
	require.NoError(t, err)
	require.Len(t, monitors, 2)

	dp := monitors[0]
	assert.Equal(t, "DP-1", dp.Name)
	assert.Equal(t, 3840, dp.Width)
	assert.InDelta(t, 1.5, dp.Scale, 1e-9)
	assert.True(t, dp.Focused)
	assert.Equal(t, models.WorkspaceRef{ID: 1, Name: "1"}, dp.ActiveWorkspace)
	assert.Equal(t, []int{0, 30, 0, 0}, dp.Reserved)

	assert.True(t, monitors[1].VRR)
	assert.Equal(t, "Monitor(id=1, name=\"HDMI-A-1\", 2560x1440)", monitors[1].String())
}

func TestValidationErrorsNameJSONFields(t *testing.T) {
	cases := []struct {
		name  string
		input string
		parse func([]byte) error
		field string
	}{
		{
			name:  "window address",
			input: `[{"address":"nothex","at":[0,0],"size":[1,1]}]`,
			parse: func(b []byte) error { _, err := models.ParseWindows(b); return err },
			field: "address",
		},
		{
			name:  "window geometry",
			input: `[{"address":"0x1","at":[0],"size":[1,1]}]`,
			parse: func(b []byte) error { _, err := models.ParseWindows(b); return err },
			field: "at",
		},
		{
			name:  "grouped member",
			input: `[{"address":"0x1","at":[0,0],"size":[1,1],"grouped":["0x2","zz"]}]`,
			parse: func(b []byte) error { _, err := models.ParseWindows(b); return err },
			field: "grouped[1]",
		},
		{
			name:  "workspace name",
			input: `[{"id":1,"name":""}]`,
			parse: func(b []byte) error { _, err := models.ParseWorkspaces(b); return err },
			field: "name",
		},
		{
			name:  "monitor scale",
			input: `[{"id":0,"name":"DP-1","scale":0}]`,
			parse: func(b []byte) error { _, err := models.ParseMonitors(b); return err },
			field: "scale",
		},
		{
			name:  "monitor transform",
			input: `[{"id":0,"name":"DP-1","scale":1,"transform":9}]`,
			parse: func(b []byte) error { _, err := models.ParseMonitors(b); return err },
			field: "transform",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.parse([]byte(tc.input))
			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr), "expected *models.ValidationError, got %v", err)
			assert.Equal(t, 0, verr.Index)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tc.field, verr.Fields[0].Field)
		})
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := models.ParseMonitors([]byte(`{"not":"a list"}`))
	require.Error(t, err)
	var verr *models.ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestAddressHelpers(t *testing.T) {
	assert.True(t, models.IsAddress("0x5581a2b0c3d0"))
	assert.True(t, models.IsAddress("5581a2b0c3d0"))
	assert.False(t, models.IsAddress("0x"))
	assert.False(t, models.IsAddress("0xzz"))

	assert.True(t, models.SameAddress("0x1a2b", "1a2b"))
	assert.False(t, models.SameAddress("0x1a2b", "1a2c"))
	assert.False(t, models.SameAddress("bad", "bad"))

	value, err := models.ParseAddress("0x10")
	require.NoError(t, err)
	assert.Equal(t, uint64(16), value)

	window := models.Window{Address: "0x10"}
	assert.Equal(t, uint64(16), window.AddressValue())
}
