package logger

import (
	"log/slog"
	"os"
)

// New builds the process logger: JSON in prod, text elsewhere. component
// distinguishes the api, worker and reporter binaries in shared sinks.
func New(env, component string) *slog.Logger {
	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(h).With("component", component)
}
