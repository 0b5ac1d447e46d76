// Package scanner builds the baseline of known files, directories, and
// content snapshots that later change notifications are diffed against.
package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

var (
	// ErrBinary is returned by ReadText for files that look binary.
	ErrBinary = errors.New("binary content")
	// ErrTooLarge is returned by ReadText for files over the snapshot cap.
	ErrTooLarge = errors.New("file exceeds snapshot size limit")
)

// binarySniffLen is how many leading bytes are checked for NUL.
const binarySniffLen = 8000

// Baseline is the result of a one-time recursive walk.
type Baseline struct {
	Root      string
	Files     map[string]struct{}
	Dirs      map[string]struct{}
	Snapshots map[string]string
}

// Unreadable returns how many known files have no snapshot.
func (b *Baseline) Unreadable() int {
	return len(b.Files) - len(b.Snapshots)
}

// Scanner walks a directory tree once to build a Baseline.
type Scanner struct {
	logger *slog.Logger
	opts   Options
}

// New creates a scanner.
func New(logger *slog.Logger, opts Options) *Scanner {
	opts.setDefaults()
	return &Scanner{logger: logger, opts: opts}
}

// Options returns the effective options, defaults applied.
func (s *Scanner) Options() Options {
	return s.opts
}

// Scan walks root. Entries that cannot be read are logged and skipped;
// only a missing or non-directory root is an error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Baseline, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	filter, err := NewFilter(root, s.opts)
	if err != nil {
		return nil, err
	}

	baseline := &Baseline{
		Root:      root,
		Files:     make(map[string]struct{}),
		Dirs:      make(map[string]struct{}),
		Snapshots: make(map[string]string),
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			s.logger.Warn("walk error", "path", path, "error", err)
			if d != nil && d.IsDir() && path != root {
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

		if d.IsDir() {
			baseline.Dirs[path] = struct{}{}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		baseline.Files[path] = struct{}{}

		content, err := ReadText(path, s.opts.MaxSnapshotBytes)
		if err != nil {
			s.logger.Debug("tracking file without snapshot", "path", path, "error", err)
			return nil
		}
		baseline.Snapshots[path] = content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	s.logger.Info("baseline scan complete",
		"root", root,
		"files", len(baseline.Files),
		"dirs", len(baseline.Dirs),
		"unreadable", baseline.Unreadable(),
	)

	return baseline, nil
}

// ReadText reads a whole file as text. Files larger than maxBytes or
// containing a NUL byte near the start are rejected.
func ReadText(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path) //#nosec G304 -- paths come from the watched tree
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxBytes <= 0 {
		maxBytes = DefaultMaxSnapshotBytes
	}

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > maxBytes {
		return "", ErrTooLarge
	}
	if bytes.IndexByte(data[:min(len(data), binarySniffLen)], 0) >= 0 {
		return "", ErrBinary
	}

	return string(data), nil
}
