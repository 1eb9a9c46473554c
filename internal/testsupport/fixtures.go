package testsupport

// Canned hyprctl JSON replies describing two monitors, two regular workspaces
// plus a special one, and one window on each regular workspace.
const (
	FirefoxAddress = "0x5581a2b0c3d0"
	KittyAddress   = "0x5581a2b0d4e0"

	ClientsJSON = `[
  {
    "address": "0x5581a2b0c3d0", "mapped": true, "hidden": false,
    "at": [10, 40], "size": [1900, 1030],
    "workspace": {"id": 1, "name": "1"},
    "floating": false, "pseudo": false, "monitor": 0,
    "class": "firefox", "title": "Mozilla Firefox",
    "initialClass": "firefox", "initialTitle": "Mozilla Firefox",
    "pid": 1234, "xwayland": false, "pinned": false,
    "fullscreen": 0, "fullscreenClient": 0,
    "grouped": [], "tags": [], "swallowing": "0x0",
    "focusHistoryID": 0, "inhibitingIdle": false,
    "xdgTag": "", "xdgDescription": ""
  },
  {
    "address": "0x5581a2b0d4e0", "mapped": true, "hidden": false,
    "at": [2000, 40], "size": [800, 600],
    "workspace": {"id": 2, "name": "2"},
    "floating": true, "pseudo": false, "monitor": 1,
    "class": "kitty", "title": "nvim, main.go",
    "initialClass": "kitty", "initialTitle": "kitty",
    "pid": 2345, "xwayland": false, "pinned": true,
    "fullscreen": 2, "fullscreenClient": 2,
    "grouped": ["0x5581a2b0d4e0"], "tags": ["term"], "swallowing": "0x0",
    "focusHistoryID": 1, "inhibitingIdle": false,
    "xdgTag": "", "xdgDescription": ""
  }
]`

	ActiveWindowJSON = `{
  "address": "0x5581a2b0c3d0", "mapped": true, "hidden": false,
  "at": [10, 40], "size": [1900, 1030],
  "workspace": {"id": 1, "name": "1"},
  "floating": false, "monitor": 0,
  "class": "firefox", "title": "Mozilla Firefox",
  "initialClass": "firefox", "initialTitle": "Mozilla Firefox",
  "pid": 1234, "xwayland": false, "pinned": false, "fullscreen": false,
  "grouped": [], "tags": [], "swallowing": "0x0", "focusHistoryID": 0,
  "inhibitingIdle": false, "xdgTag": "", "xdgDescription": ""
}`

	WorkspacesJSON = `[
  {"id": 1, "name": "1", "monitor": "DP-1", "monitorID": 0, "windows": 1,
   "hasfullscreen": false, "lastwindow": "0x5581a2b0c3d0", "lastwindowtitle": "Mozilla Firefox"},
  {"id": 2, "name": "2", "monitor": "HDMI-A-1", "monitorID": 1, "windows": 1,
   "hasfullscreen": true, "lastwindow": "0x5581a2b0d4e0", "lastwindowtitle": "nvim, main.go"},
  {"id": -98, "name": "special:scratch", "monitor": "DP-1", "monitorID": 0, "windows": 0,
   "hasfullscreen": false, "lastwindow": "0x0", "lastwindowtitle": ""}
]`

	ActiveWorkspaceJSON = `{"id": 1, "name": "1", "monitor": "DP-1", "monitorID": 0, "windows": 1,
  "hasfullscreen": false, "lastwindow": "0x5581a2b0c3d0", "lastwindowtitle": "Mozilla Firefox"}`

	MonitorsJSON = `[
  {"id": 0, "name": "DP-1", "description": "Dell Inc. DELL U2720Q 4K", "make": "Dell Inc.",
   "model": "DELL U2720Q", "serial": "4K0001", "width": 3840, "height": 2160,
   "refreshRate": 59.997, "x": 0, "y": 0,
   "activeWorkspace": {"id": 1, "name": "1"}, "specialWorkspace": {"id": 0, "name": ""},
   "reserved": [0, 30, 0, 0], "scale": 1.5, "transform": 0, "focused": true,
   "dpmsStatus": true, "vrr": false, "disabled": false},
  {"id": 1, "name": "HDMI-A-1", "description": "LG Electronics 27GL850", "make": "LG Electronics",
   "model": "27GL850", "serial": "", "width": 2560, "height": 1440,
   "refreshRate": 143.912, "x": 2560, "y": 0,
   "activeWorkspace": {"id": 2, "name": "2"}, "specialWorkspace": {"id": 0, "name": ""},
   "reserved": [0, 0, 0, 0], "scale": 1.0, "transform": 0, "focused": false,
   "dpmsStatus": true, "vrr": true, "disabled": false}
]`
)

// ServeFixtures scripts the canned JSON replies for every data query the
// instance facade issues.
func (c *Compositor) ServeFixtures() {
	c.Respond("j/clients", ClientsJSON)
	c.Respond("j/activewindow", ActiveWindowJSON)
	c.Respond("j/workspaces", WorkspacesJSON)
	c.Respond("j/activeworkspace", ActiveWorkspaceJSON)
	c.Respond("j/monitors", MonitorsJSON)
}
