package watcher

import (
	"github.com/listenupapp/docwatch/internal/scanner"
)

// Options configures the change watcher.
type Options struct {
	// Root is the directory tree to watch.
	Root string
	// EventBuffer is the capacity of the Events channel.
	EventBuffer int

	scanner.Options
}

func (o *Options) setDefaults() {
	if o.Root == "" {
		o.Root = "."
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 256
	}
}
