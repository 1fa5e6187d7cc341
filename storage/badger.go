package storage

import (
	"context"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// OpenBadger opens the on-disk store. The debug level also bypasses the
// directory lock so the inspector can read a live database.
func OpenBadger(ctx context.Context, path string, logger *slog.Logger) (*badger.DB, error) {
	options := badger.DefaultOptions(path)
	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}
	return badger.Open(options)
}

// OpenInMemory is used by tests and by the dev server when no path is configured.
func OpenInMemory() (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}
