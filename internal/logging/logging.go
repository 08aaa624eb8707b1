package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a config level name to a slog level. Unknown names fall
// back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup configures the global slog logger based on the log level and optional log file.
// Logs go to stderr so they never mix with command output. The returned
// function closes the log file, if one was opened.
func Setup(level string, logFile string) func() error {
	var writer io.Writer = os.Stderr
	closer := func() error { return nil }

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			writer = io.MultiWriter(os.Stderr, f)
			closer = f.Close
		}
	}

	slog.SetDefault(New(writer, level))
	return closer
}

// New creates a text logger writing to w
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler).With("component", "migration-analyzer")
}
