package compositor

import (
	"log/slog"

	"github.com/kcenon/blackbox-player-sub005/internal/gpu"
)

// SetLogger configures the logger used by the compositor and its GPU layer.
// By default no log output is produced. Pass nil to restore the silent
// default.
//
// SetLogger is safe for concurrent use: the logger is stored atomically.
//
// Log levels used:
//   - [slog.LevelDebug]: per-render diagnostics (skipped channels, cache misses)
//   - [slog.LevelInfo]: lifecycle events (adapter selected, pipelines built)
//   - [slog.LevelWarn]: non-fatal anomalies (resource release failures)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	compositor.SetLogger(slog.Default())
func SetLogger(l *slog.Logger) {
	gpu.SetLogger(l)
}

// Logger returns the current logger. Internal packages call this so the
// whole module shares one logger configuration.
func Logger() *slog.Logger {
	return gpu.Logger()
}
