package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/docwatch/internal/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanner_Scan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "pkg", "util", "util.go"), "package util")
	writeFile(t, filepath.Join(root, "node_modules", "lib", "index.js"), "module.exports = {}")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")
	writeFile(t, filepath.Join(root, ".env"), "SECRET=1")
	writeFile(t, filepath.Join(root, "scratch.tmp"), "junk")
	writeFile(t, filepath.Join(root, "logo.bin"), "PNG\x00\x00data")

	s := New(logger.Discard(), Options{})
	baseline, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, root, baseline.Root)

	assert.Contains(t, baseline.Files, filepath.Join(root, "main.go"))
	assert.Contains(t, baseline.Files, filepath.Join(root, "pkg", "util", "util.go"))
	assert.Contains(t, baseline.Files, filepath.Join(root, "logo.bin"))
	assert.NotContains(t, baseline.Files, filepath.Join(root, "node_modules", "lib", "index.js"))
	assert.NotContains(t, baseline.Files, filepath.Join(root, ".git", "HEAD"))
	assert.NotContains(t, baseline.Files, filepath.Join(root, ".env"))
	assert.NotContains(t, baseline.Files, filepath.Join(root, "scratch.tmp"))

	assert.Contains(t, baseline.Dirs, root)
	assert.Contains(t, baseline.Dirs, filepath.Join(root, "pkg", "util"))
	assert.NotContains(t, baseline.Dirs, filepath.Join(root, "node_modules"))

	assert.Equal(t, "package main\n", baseline.Snapshots[filepath.Join(root, "main.go")])
	assert.NotContains(t, baseline.Snapshots, filepath.Join(root, "logo.bin"), "binary files have no snapshot")
	assert.Equal(t, 1, baseline.Unreadable())
}

func TestScanner_UnreadableFileIsKnownWithoutSnapshot(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked.go")
	writeFile(t, locked, "package locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	baseline, err := New(logger.Discard(), Options{}).Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Contains(t, baseline.Files, locked)
	assert.NotContains(t, baseline.Snapshots, locked)
}

func TestScanner_RootErrors(t *testing.T) {
	s := New(logger.Discard(), Options{})

	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.go")
	writeFile(t, file, "x")
	_, err = s.Scan(context.Background(), file)
	assert.Error(t, err)
}

func TestScanner_ContextCanceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(logger.Discard(), Options{}).Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadText(t *testing.T) {
	dir := t.TempDir()

	text := filepath.Join(dir, "a.go")
	writeFile(t, text, "hello\nworld")
	got, err := ReadText(text, 1024)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", got)

	big := filepath.Join(dir, "big.go")
	writeFile(t, big, "0123456789")
	_, err = ReadText(big, 5)
	assert.ErrorIs(t, err, ErrTooLarge)

	bin := filepath.Join(dir, "bin.go")
	writeFile(t, bin, "ab\x00cd")
	_, err = ReadText(bin, 1024)
	assert.ErrorIs(t, err, ErrBinary)

	_, err = ReadText(filepath.Join(dir, "missing.go"), 1024)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
