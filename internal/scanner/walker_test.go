package scanner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/docwatch/internal/logger"
)

func TestWalkDirsAndFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "new", "a.go"), "a")
	writeFile(t, filepath.Join(root, "new", "deep", "b.go"), "b")
	writeFile(t, filepath.Join(root, "new", "vendor", "c.go"), "c")

	filter, err := NewFilter(root, Options{})
	require.NoError(t, err)

	dir := filepath.Join(root, "new")
	dirs := WalkDirs(context.Background(), logger.Discard(), filter, dir)
	assert.Equal(t, []string{dir, filepath.Join(dir, "deep")}, dirs)

	files := WalkFiles(context.Background(), logger.Discard(), filter, dir)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.go"),
		filepath.Join(dir, "deep", "b.go"),
	}, files)
}
