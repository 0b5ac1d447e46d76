// Package store defines the persistence interface for generation history.
package store

import (
	"context"

	"github.com/listenupapp/docwatch/internal/generator"
)

// History limits.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// History persists dispatch results. It is append-only.
type History interface {
	// RecordResult stores one result.
	RecordResult(ctx context.Context, result generator.Result) error
	// History returns the newest results for path, newest first. An empty
	// path returns results for every file.
	History(ctx context.Context, path string, limit int) ([]generator.Result, error)
	// LastSuccess returns the newest successful result for path, or a
	// NOT_FOUND error when there is none.
	LastSuccess(ctx context.Context, path string) (*generator.Result, error)
	Close() error
}

// ClampLimit applies the default and maximum history page sizes.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
