package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/listenupapp/docwatch/internal/generator"
)

const recordTimeout = 5 * time.Second

// Recorder returns a result sink that persists each result. Persistence
// failures are logged and never reach the caller.
func Recorder(history History, logger *slog.Logger) func(generator.Result) {
	return func(result generator.Result) {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := history.RecordResult(ctx, result); err != nil {
			logger.Warn("failed to record generation result",
				"path", result.FilePath,
				"id", result.ID,
				"error", err,
			)
		}
	}
}
