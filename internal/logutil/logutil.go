// Package logutil holds the process-wide log level and helpers for scoped
// save/restore of global logging state.
package logutil

import (
	"log/slog"
	"os"
)

// Level is the process-wide log level. CLI commands adjust it (e.g. for
// --verbose); handlers created by NewHandler observe changes immediately.
var Level = new(slog.LevelVar)

// NewHandler returns a text handler on stderr bound to the shared Level.
func NewHandler() slog.Handler {
	return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: Level})
}

// Preserve captures the current global logging state and returns a function
// that restores it. Use with defer so that any changes a command makes to the
// log level or default logger never leak past a single invocation:
//
//	defer logutil.Preserve()()
func Preserve() func() {
	savedLogger := slog.Default()
	savedLevel := Level.Level()
	return func() {
		slog.SetDefault(savedLogger)
		Level.Set(savedLevel)
	}
}
