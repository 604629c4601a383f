// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Log is the shared logger. It discards debug records until Init is called
// with verbose set.
var Log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init replaces Log with a text logger writing to w.
func Init(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	Log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
