package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/docwatch/internal/errors"
	"github.com/listenupapp/docwatch/internal/generator"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func result(id, path string, offset time.Duration, success bool) generator.Result {
	r := generator.Result{
		ID:           id,
		FilePath:     path,
		DetailLevel:  "standard",
		Trigger:      generator.TriggerAuto,
		LinesChanged: 45,
		Success:      success,
		StartedAt:    base.Add(offset),
		FinishedAt:   base.Add(offset + 1500*time.Millisecond),
	}
	if success {
		r.OutputLocation = path + ".doc.md"
	} else {
		r.ErrorMessage = "generator failed"
	}
	return r
}

func TestRecordResult_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := result("gen-1", "/repo/main.go", 0, true)
	require.NoError(t, s.RecordResult(ctx, want))

	got, err := s.History(ctx, "/repo/main.go", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestRecordResult_GeneratesMissingID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordResult(ctx, result("", "/repo/main.go", 0, false)))

	got, err := s.History(ctx, "/repo/main.go", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].Success)
	assert.Equal(t, "generator failed", got[0].ErrorMessage)
	assert.Empty(t, got[0].OutputLocation)
}

func TestRecordResult_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordResult(ctx, result("gen-1", "/repo/main.go", 0, true)))
	assert.Error(t, s.RecordResult(ctx, result("gen-1", "/repo/main.go", time.Second, true)))
}

func TestHistory_NewestFirstAndFiltered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordResult(ctx, result("gen-1", "/repo/main.go", 0, true)))
	require.NoError(t, s.RecordResult(ctx, result("gen-2", "/repo/util.go", time.Minute, true)))
	require.NoError(t, s.RecordResult(ctx, result("gen-3", "/repo/main.go", 2*time.Minute, false)))
	require.NoError(t, s.RecordResult(ctx, result("gen-4", "/repo/main.go", 500*time.Millisecond, true)))

	got, err := s.History(ctx, "/repo/main.go", 10)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"gen-3", "gen-4", "gen-1"}, ids)

	all, err := s.History(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	limited, err := s.History(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "gen-3", limited[0].ID)
	assert.Equal(t, "gen-2", limited[1].ID)

	none, err := s.History(ctx, "/repo/missing.go", 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLastSuccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LastSuccess(ctx, "/repo/main.go")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, s.RecordResult(ctx, result("gen-1", "/repo/main.go", 0, true)))
	require.NoError(t, s.RecordResult(ctx, result("gen-2", "/repo/main.go", time.Minute, false)))

	got, err := s.LastSuccess(ctx, "/repo/main.go")
	require.NoError(t, err)
	assert.Equal(t, "gen-1", got.ID)
	assert.Equal(t, "/repo/main.go.doc.md", got.OutputLocation)
}
