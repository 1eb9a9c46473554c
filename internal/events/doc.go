// Package events interprets the untyped fields of Hyprland event frames.
//
// Each known event has a parser producing named values (window addresses,
// workspace ids, flags). Payloads whose last field is free text, such as
// window titles, are split with a bounded count so embedded commas survive.
// Unknown events are passed through with their raw fields so new compositor
// releases never break a watcher.
package events
