// Package telemetry provides the optional structured logger used to trace
// tree maintenance events (splits, merges, borrows, root collapses).
//
// Logging is off by default (logr.Discard()); callers opt in with
// bptree.WithLogger.
package telemetry

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// Discard returns a logger that drops every record, used when the caller
// does not supply one.
func Discard() logr.Logger {
	return logr.Discard()
}

// Default returns a logr.Logger backed by the standard library "log"
// package. Maintenance events are logged at V(1), which stdr drops unless
// its verbosity is raised with stdr.SetVerbosity.
func Default() logr.Logger {
	return stdr.New(nil)
}
