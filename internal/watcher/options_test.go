package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	assert.Equal(t, ".", opts.Root)
	assert.Equal(t, 256, opts.EventBuffer)
}

func TestOptions_CustomValues(t *testing.T) {
	opts := Options{Root: "/repo", EventBuffer: 8}
	opts.setDefaults()

	assert.Equal(t, "/repo", opts.Root)
	assert.Equal(t, 8, opts.EventBuffer)
}
