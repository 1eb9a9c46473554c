// Package models holds the window, workspace and monitor records returned by
// the compositor's JSON queries, and validates them on decode.
package models
