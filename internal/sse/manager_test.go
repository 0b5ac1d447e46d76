package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/docwatch/internal/generator"
	"github.com/listenupapp/docwatch/internal/logger"
)

func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(func() {
		cancel()
		_ = m.Shutdown(context.Background())
	})
	return m
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case event := <-c.EventChan:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestNewGenerationEvent(t *testing.T) {
	ok := NewGenerationEvent(generator.Result{FilePath: "/repo/main.go", Success: true})
	assert.Equal(t, EventGenerationCompleted, ok.Type)
	assert.Equal(t, "/repo/main.go", ok.Path)

	failed := NewGenerationEvent(generator.Result{FilePath: "/repo/main.go"})
	assert.Equal(t, EventGenerationFailed, failed.Type)
}

func TestManager_ConnectDisconnect(t *testing.T) {
	m := NewManager(logger.Discard())

	client, err := m.Connect("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(client.ID, "sse-"))
	assert.Equal(t, 1, m.ClientCount())

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	_, open := <-client.Done
	assert.False(t, open)

	// Unknown IDs are ignored.
	m.Disconnect("sse-missing")
}

func TestManager_PublishBroadcasts(t *testing.T) {
	m := startManager(t)

	a, err := m.Connect("")
	require.NoError(t, err)
	b, err := m.Connect("")
	require.NoError(t, err)

	m.Publish(generator.Result{ID: "gen-1", FilePath: "/repo/main.go", Success: true})

	for _, c := range []*Client{a, b} {
		event := receive(t, c)
		assert.Equal(t, EventGenerationCompleted, event.Type)
		result, ok := event.Data.(generator.Result)
		require.True(t, ok)
		assert.Equal(t, "gen-1", result.ID)
	}
}

func TestManager_PathFilter(t *testing.T) {
	m := startManager(t)

	scoped, err := m.Connect("/repo/web")
	require.NoError(t, err)

	m.Publish(generator.Result{FilePath: "/repo/main.go", Success: true})
	m.Publish(generator.Result{FilePath: "/repo/web/app.ts", Success: false})
	m.Emit(NewTrackingResetEvent(""))

	event := receive(t, scoped)
	assert.Equal(t, EventGenerationFailed, event.Type)
	assert.Equal(t, "/repo/web/app.ts", event.Path)

	event = receive(t, scoped)
	assert.Equal(t, EventTrackingReset, event.Type, "unscoped events reach every client")
}

func TestManager_Heartbeat(t *testing.T) {
	m := NewManager(logger.Discard())
	m.SetHeartbeatInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	client, err := m.Connect("")
	require.NoError(t, err)

	assert.Equal(t, EventHeartbeat, receive(t, client).Type)
}

func TestManager_ShutdownClosesClients(t *testing.T) {
	m := NewManager(logger.Discard())
	go m.Start(context.Background())

	client, err := m.Connect("")
	require.NoError(t, err)

	require.NoError(t, m.Shutdown(context.Background()))

	select {
	case <-client.Done:
	case <-time.After(2 * time.Second):
		t.Fatal("client not closed on shutdown")
	}

	// Emit after shutdown is a no-op and a second shutdown is safe.
	m.Publish(generator.Result{FilePath: "/repo/main.go"})
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestHandler_StreamsEvents(t *testing.T) {
	m := startManager(t)
	server := httptest.NewServer(NewHandler(m, "/repo", logger.Discard()))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"?path=web", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		t.Helper()
		var eventType, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				eventType = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return eventType, data
			}
		}
	}

	eventType, _ := readEvent()
	require.Equal(t, "connected", eventType)

	m.Publish(generator.Result{ID: "gen-skip", FilePath: "/repo/main.go", Success: true})
	m.Publish(generator.Result{ID: "gen-1", FilePath: "/repo/web/app.ts", Success: true})

	eventType, data := readEvent()
	assert.Equal(t, string(EventGenerationCompleted), eventType)

	var payload struct {
		Type string           `json:"type"`
		Data generator.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, "gen-1", payload.Data.ID)
	assert.Equal(t, "/repo/web/app.ts", payload.Data.FilePath)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	h := NewHandler(NewManager(logger.Discard()), "", logger.Discard())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
