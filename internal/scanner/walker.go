package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
)

// WalkDirs returns every non-skipped directory at or below dir, dir first.
// The watcher uses it to register watches for a subtree that appeared after
// the baseline scan. Unreadable subdirectories are logged and skipped.
func WalkDirs(ctx context.Context, logger *slog.Logger, filter *Filter, dir string) []string {
	var dirs []string

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			logger.Warn("walk error", "path", path, "error", err)
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && filter.Skip(path, true) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})

	return dirs
}

// WalkFiles returns every non-skipped regular file below dir.
func WalkFiles(ctx context.Context, logger *slog.Logger, filter *Filter, dir string) []string {
	var files []string

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			logger.Warn("walk error", "path", path, "error", err)
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if filter.Skip(path, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})

	return files
}
