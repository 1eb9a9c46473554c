// Package signals is the in-process publish/subscribe registry that delivers
// interpreted compositor events to user handlers.
//
// A Bus is owned by one Instance; there is no package-level registry.
package signals
