package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/docwatch/internal/config"
	"github.com/listenupapp/docwatch/internal/logger"
	"github.com/listenupapp/docwatch/internal/trigger"
	"github.com/listenupapp/docwatch/internal/watcher"
)

// FileWatcherHandle wraps the file watcher with shutdown capability.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	h.cancel()
	err := h.Watcher.Stop()
	<-h.done
	return err
}

// ProvideFileWatcher provides the file system watcher and feeds its events
// to the trigger controller.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	controller := do.MustInvoke[*trigger.Controller](i)

	w, err := watcher.New(log.Logger, watcher.Options{
		Root:    cfg.Watch.Root,
		Options: cfg.ScannerOptions(),
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := w.Start(ctx); err != nil {
		cancel()
		_ = w.Stop()
		return nil, err
	}

	handle := controller.Callback()
	done := make(chan struct{})

	// Process events in background
	go func() {
		defer close(done)
		events, errs := w.Events(), w.Errors()
		for events != nil || errs != nil {
			select {
			case event, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				handle(event)
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				log.WithError(err).Warn("file watcher error")
			}
		}
	}()

	log.Info("File watcher started", "root", w.Root())

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
		done:    done,
	}, nil
}
