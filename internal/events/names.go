package events

// Event names as they appear on the event socket.
const (
	ActiveLayout       = "activelayout"
	ActiveSpecial      = "activespecial"
	ActiveSpecialV2    = "activespecialv2"
	ActiveWindow       = "activewindow"
	ActiveWindowV2     = "activewindowv2"
	ChangeFloatingMode = "changefloatingmode"
	CloseLayer         = "closelayer"
	CloseWindow        = "closewindow"
	ConfigReloaded     = "configreloaded"
	CreateWorkspace    = "createworkspace"
	CreateWorkspaceV2  = "createworkspacev2"
	DestroyWorkspace   = "destroyworkspace"
	DestroyWorkspaceV2 = "destroyworkspacev2"
	FocusedMon         = "focusedmon"
	FocusedMonV2       = "focusedmonv2"
	Fullscreen         = "fullscreen"
	IgnoreGroupLock    = "ignoregrouplock"
	LockGroups         = "lockgroups"
	MonitorAdded       = "monitoradded"
	MonitorAddedV2     = "monitoraddedv2"
	MonitorRemoved     = "monitorremoved"
	MoveIntoGroup      = "moveintogroup"
	MoveOutOfGroup     = "moveoutofgroup"
	MoveWindow         = "movewindow"
	MoveWindowV2       = "movewindowv2"
	MoveWorkspace      = "moveworkspace"
	MoveWorkspaceV2    = "moveworkspacev2"
	OpenLayer          = "openlayer"
	OpenWindow         = "openwindow"
	Pin                = "pin"
	RenameWorkspace    = "renameworkspace"
	Screencast         = "screencast"
	Submap             = "submap"
	ToggleGroup        = "togglegroup"
	Urgent             = "urgent"
	WindowTitle        = "windowtitle"
	WindowTitleV2      = "windowtitlev2"
	Workspace          = "workspace"
	WorkspaceV2        = "workspacev2"
)

// Keys used in interpreted event data.
const (
	KeyKeyboardName           = "keyboard_name"
	KeyLayoutName             = "layout_name"
	KeyWorkspaceID            = "workspace_id"
	KeyWorkspaceName          = "workspace_name"
	KeyMonitorID              = "monitor_id"
	KeyMonitorName            = "monitor_name"
	KeyMonitorDescription     = "monitor_description"
	KeyWindowAddress          = "window_address"
	KeyWindowAddresses        = "window_addresses"
	KeyWindowClass            = "window_class"
	KeyWindowTitle            = "window_title"
	KeyNamespace              = "namespace"
	KeyNewName                = "new_name"
	KeyIsFloating             = "is_floating"
	KeyIsFullscreen           = "is_fullscreen"
	KeyIsPinned               = "is_pinned"
	KeyIgnoreGroupLockEnabled = "ignore_group_lock_enabled"
	KeyLockGroupsEnabled      = "lock_groups_enabled"
	KeyScreencastEnabled      = "screencast_enabled"
	KeyScreencastType         = "screencast_type"
	KeySubmapName             = "submap_name"
	KeyGroupIsActive          = "group_is_active"
	// KeyFields holds the raw fields of events without a registered parser.
	KeyFields = "fields"
)

// Screencast owners reported under KeyScreencastType.
const (
	ScreencastMonitor = "MONITOR"
	ScreencastWindow  = "WINDOW"
)
