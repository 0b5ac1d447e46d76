// Package watcher turns native filesystem notifications for a directory tree
// into normalized change events carrying line statistics.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/listenupapp/docwatch/internal/diff"
	"github.com/listenupapp/docwatch/internal/scanner"
)

// Watcher monitors a directory tree. It owns the known-files and
// known-directories sets and the snapshot store used as diff baseline.
type Watcher struct {
	logger  *slog.Logger
	opts    Options
	scanner *scanner.Scanner
	filter  *scanner.Filter
	fsw     *fsnotify.Watcher
	watch   func(dir string) error

	mu        sync.RWMutex
	files     map[string]struct{}
	dirs      map[string]struct{}
	snapshots map[string]string

	events   chan Event
	errors   chan error
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a watcher for opts.Root. Nothing is watched until Start.
func New(logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	opts.Root = root

	s := scanner.New(logger, opts.Options)
	opts.Options = s.Options()

	filter, err := scanner.NewFilter(root, opts.Options)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:    logger,
		opts:      opts,
		scanner:   s,
		filter:    filter,
		fsw:       fsw,
		watch:     fsw.Add,
		files:     make(map[string]struct{}),
		dirs:      make(map[string]struct{}),
		snapshots: make(map[string]string),
		events:    make(chan Event, opts.EventBuffer),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}, nil
}

// Root returns the absolute watched root.
func (w *Watcher) Root() string {
	return w.opts.Root
}

// Start builds the baseline, registers watches for every known directory,
// and begins emitting events in the background. It returns once watching
// is in place; events stop when ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	baseline, err := w.scanner.Scan(ctx, w.opts.Root)
	if err != nil {
		return fmt.Errorf("baseline scan: %w", err)
	}

	w.mu.Lock()
	w.files = baseline.Files
	w.dirs = baseline.Dirs
	w.snapshots = baseline.Snapshots
	w.mu.Unlock()

	watched := 0
	for dir := range baseline.Dirs {
		if w.addWatch(dir) {
			watched++
		}
	}

	w.wg.Add(1)
	go w.processEvents(ctx)

	w.logger.Info("watching for changes",
		"root", w.opts.Root,
		"directories", watched,
		"files", len(baseline.Files),
	)
	return nil
}

// Stop stops watching and closes the Events and Errors channels.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
		close(w.events)
		close(w.errors)
	})
	return err
}

// Events returns the channel of normalized change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watcher errors. Errors are informational;
// the watcher keeps running.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Snapshot returns the last-known content of path.
func (w *Watcher) Snapshot(path string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	content, ok := w.snapshots[path]
	return content, ok
}

// Known reports whether path is a known file or directory.
func (w *Watcher) Known(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, file := w.files[path]
	_, dir := w.dirs[path]
	return file || dir
}

// addWatch registers a single directory. Failures are logged and skipped so
// one unwatchable subtree never aborts the rest.
func (w *Watcher) addWatch(dir string) bool {
	if err := w.watch(dir); err != nil {
		w.logger.Warn("failed to add watch", "path", dir, "error", err)
		return false
	}
	w.logger.Debug("added watch", "path", dir)
	return true
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// handle classifies one native notification.
func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		// Removals and renames carry no content to diff.
		return
	}

	path := filepath.Clean(event.Name)

	info, err := os.Stat(path)
	if err != nil {
		// Gone between notification and stat.
		w.logger.Debug("skipping vanished path", "path", path, "error", err)
		return
	}

	if w.filter.Skip(path, info.IsDir()) {
		return
	}

	if info.IsDir() {
		w.handleDirectory(ctx, path)
		return
	}

	if !info.Mode().IsRegular() {
		return
	}

	w.handleFile(path)
}

func (w *Watcher) handleDirectory(ctx context.Context, dir string) {
	w.mu.Lock()
	_, known := w.dirs[dir]
	w.mu.Unlock()
	if known {
		return
	}

	// Files can land in a new directory before its watch exists, so the
	// whole subtree is registered and its files are reported as created.
	for _, sub := range scanner.WalkDirs(ctx, w.logger, w.filter, dir) {
		w.mu.Lock()
		_, seen := w.dirs[sub]
		w.dirs[sub] = struct{}{}
		w.mu.Unlock()
		if seen {
			continue
		}
		w.addWatch(sub)
		w.emit(Event{Kind: KindDirectoryCreated, Name: filepath.Base(sub), Path: sub})
	}

	for _, file := range scanner.WalkFiles(ctx, w.logger, w.filter, dir) {
		w.handleFile(file)
	}
}

func (w *Watcher) handleFile(path string) {
	w.mu.RLock()
	_, known := w.files[path]
	previous, hasSnapshot := w.snapshots[path]
	w.mu.RUnlock()

	content, readErr := scanner.ReadText(path, w.opts.MaxSnapshotBytes)

	if !known {
		w.mu.Lock()
		w.files[path] = struct{}{}
		if readErr == nil {
			w.snapshots[path] = content
		}
		w.mu.Unlock()

		event := Event{Kind: KindCreated, Name: filepath.Base(path), Path: path}
		if readErr == nil {
			event.LinesChanged = diff.CountLines(content)
			event.HasCounts = true
		} else {
			w.logger.Debug("created file unreadable", "path", path, "error", readErr)
		}
		w.emit(event)
		return
	}

	if readErr != nil {
		if errors.Is(readErr, fs.ErrNotExist) {
			w.logger.Debug("skipping vanished file", "path", path)
			return
		}
		w.logger.Debug("modified file unreadable", "path", path, "error", readErr)
		w.emit(Event{Kind: KindModified, Name: filepath.Base(path), Path: path})
		return
	}

	if !hasSnapshot {
		previous = ""
	}
	stats := diff.Lines(previous, content)

	w.mu.Lock()
	w.snapshots[path] = content
	w.mu.Unlock()

	w.emit(Event{
		Kind:         KindModified,
		Name:         filepath.Base(path),
		Path:         path,
		LinesChanged: stats.Total,
		LinesAdded:   stats.Added,
		LinesDeleted: stats.Deleted,
		HasCounts:    true,
	})
}

func (w *Watcher) emit(event Event) {
	select {
	case w.events <- event:
	case <-w.done:
	}
}

func (w *Watcher) reportError(err error) {
	select {
	case w.errors <- err:
	default:
		w.logger.Warn("dropped watcher error", "error", err)
	}
}
