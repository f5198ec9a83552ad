// Package logging centralizes slog handler setup for the engine and its
// subsystems, adapted from the teacher's per-VM logger setup: if the caller
// doesn't supply a handler, fall back to a default one and warn about it.
package logging

import (
	"log/slog"
	"os"
)

// Setup returns handler if non-nil, otherwise a default stderr text handler at
// LevelWarn. groupName, if non-empty, scopes every record the returned
// logger emits under that group (e.g. "engine", "dag").
func Setup(handler slog.Handler, groupName string) (slog.Handler, *slog.Logger) {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
		slog.New(handler).Warn("no logging handler configured, using default")
	}
	if groupName == "" {
		return handler, slog.New(handler)
	}
	grouped := handler.WithGroup(groupName)
	return handler, slog.New(grouped)
}

// Default returns the package's fallback handler directly, for callers that
// need a handler value rather than a ready-made logger (e.g. default Config
// construction in engineopts).
func Default() slog.Handler {
	return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
}
