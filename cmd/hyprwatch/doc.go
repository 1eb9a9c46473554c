// Command hyprwatch queries and watches a running Hyprland compositor over its
// IPC sockets.
//
//	hyprwatch windows|workspaces|monitors [--json]
//	hyprwatch active
//	hyprwatch query <request>...
//	hyprwatch dispatch <dispatcher> [args...]
//	hyprwatch watch [--event name]... [--json|--text] [--exclusive] [--wait] [--count n]
//	               [--metrics-listen addr]
//	hyprwatch config init|show
//
// Global flags --config, --signature, --socket-dir and --log-level apply to
// every subcommand.
package main
