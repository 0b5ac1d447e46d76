package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/docwatch/internal/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='generations'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "generations", name)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	s, err := Open(path, logger.Discard())
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(dbPath, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, logger.Discard())
	require.NoError(t, err)
	assert.NoError(t, s2.Shutdown())
}
