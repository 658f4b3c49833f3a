package logging

import (
	"log/slog"
	"os"
)

// SetupJSON sets slog's default logger to JSON output at the given level.
// Logs go to stderr; stdout belongs to the console host.
func SetupJSON(level slog.Level) {
	logger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	)
	slog.SetDefault(logger)
}
