package store_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listenupapp/docwatch/internal/generator"
	"github.com/listenupapp/docwatch/internal/store"
)

type memoryHistory struct {
	mu      sync.Mutex
	results []generator.Result
	err     error
}

func (m *memoryHistory) RecordResult(_ context.Context, result generator.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.results = append(m.results, result)
	return nil
}

func (m *memoryHistory) History(context.Context, string, int) ([]generator.Result, error) {
	return nil, nil
}

func (m *memoryHistory) LastSuccess(context.Context, string) (*generator.Result, error) {
	return nil, nil
}

func (m *memoryHistory) Close() error { return nil }

func TestRecorder_Persists(t *testing.T) {
	history := &memoryHistory{}
	sink := store.Recorder(history, slog.New(slog.DiscardHandler))

	sink(generator.Result{ID: "gen-1", FilePath: "/repo/main.go", Success: true})

	assert.Len(t, history.results, 1)
	assert.Equal(t, "gen-1", history.results[0].ID)
}

func TestRecorder_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	history := &memoryHistory{err: errors.New("disk full")}
	sink := store.Recorder(history, slog.New(slog.NewTextHandler(&buf, nil)))

	assert.NotPanics(t, func() {
		sink(generator.Result{ID: "gen-1", FilePath: "/repo/main.go"})
	})
	assert.Contains(t, buf.String(), "failed to record generation result")
	assert.Contains(t, buf.String(), "disk full")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, store.DefaultHistoryLimit, store.ClampLimit(0))
	assert.Equal(t, store.DefaultHistoryLimit, store.ClampLimit(-3))
	assert.Equal(t, 10, store.ClampLimit(10))
	assert.Equal(t, store.MaxHistoryLimit, store.ClampLimit(10_000))
}
