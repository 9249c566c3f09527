package store

import "github.com/decred/slog"

// log is the package logger. Logging is disabled until the caller wires a
// backend through UseLogger.
var log = slog.Disabled

// UseLogger sets the package logger.
func UseLogger(logger slog.Logger) {
	log = logger
}
