package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/docwatch/internal/classify"
	"github.com/listenupapp/docwatch/internal/logger"
	"github.com/listenupapp/docwatch/internal/ratelimit"
)

func testJob() Job {
	return Job{
		Request:      Request{Path: "/repo/main.go", DetailLevel: classify.DetailDetailed},
		Trigger:      TriggerAuto,
		LinesChanged: 45,
	}
}

func TestDispatcher_Success(t *testing.T) {
	var got Request
	gen := Func(func(_ context.Context, req Request) (Response, error) {
		got = req
		return Response{Success: true, OutputLocation: "/repo/main.doc.md"}, nil
	})

	result := NewDispatcher(gen, nil, logger.Discard()).Dispatch(context.Background(), testJob())

	assert.True(t, result.Success)
	assert.Equal(t, "/repo/main.doc.md", result.OutputLocation)
	assert.Empty(t, result.ErrorMessage)
	assert.Equal(t, "/repo/main.go", result.FilePath)
	assert.Equal(t, "detailed", result.DetailLevel)
	assert.Equal(t, TriggerAuto, result.Trigger)
	assert.Equal(t, 45, result.LinesChanged)
	assert.True(t, strings.HasPrefix(result.ID, "gen-"))
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
	assert.Equal(t, "/repo/main.go", got.Path)
}

func TestDispatcher_Failures(t *testing.T) {
	tests := []struct {
		name    string
		gen     Func
		wantMsg string
	}{
		{
			name: "error",
			gen: func(context.Context, Request) (Response, error) {
				return Response{}, errors.New("model unavailable")
			},
			wantMsg: "model unavailable",
		},
		{
			name: "reported failure",
			gen: func(context.Context, Request) (Response, error) {
				return Response{Success: false, ErrorMessage: "quota exceeded"}, nil
			},
			wantMsg: "quota exceeded",
		},
		{
			name: "reported failure without message",
			gen: func(context.Context, Request) (Response, error) {
				return Response{}, nil
			},
			wantMsg: "generator reported failure",
		},
		{
			name: "panic",
			gen: func(context.Context, Request) (Response, error) {
				panic("boom")
			},
			wantMsg: "generator panicked: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewDispatcher(tt.gen, nil, logger.Discard()).Dispatch(context.Background(), testJob())

			assert.False(t, result.Success)
			assert.Equal(t, tt.wantMsg, result.ErrorMessage)
			assert.Empty(t, result.OutputLocation)
			assert.Equal(t, "/repo/main.go", result.FilePath)
		})
	}
}

func TestDispatcher_CanceledWaitBecomesFailedResult(t *testing.T) {
	called := false
	gen := Func(func(context.Context, Request) (Response, error) {
		called = true
		return Response{Success: true}, nil
	})

	limiter := ratelimit.New(0.001, 1)
	require.True(t, limiter.Allow(string(TriggerAuto)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result := NewDispatcher(gen, limiter, logger.Discard()).Dispatch(ctx, testJob())

	assert.False(t, called)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "waiting for generation slot")
}

func TestDispatcher_ManualUsesSeparateBucket(t *testing.T) {
	gen := Func(func(context.Context, Request) (Response, error) {
		return Response{Success: true}, nil
	})

	limiter := ratelimit.New(0.001, 1)
	require.True(t, limiter.Allow(string(TriggerAuto)))

	job := testJob()
	job.Trigger = TriggerManual

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result := NewDispatcher(gen, limiter, logger.Discard()).Dispatch(ctx, job)
	assert.True(t, result.Success)
}
