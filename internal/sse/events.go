// Package sse implements Server-Sent Events for streaming generation results
// and tracking changes to connected clients.
package sse

import (
	"time"

	"github.com/listenupapp/docwatch/internal/generator"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventGenerationCompleted is sent when documentation was generated.
	EventGenerationCompleted EventType = "generation.completed"
	// EventGenerationFailed is sent when a dispatch produced a failed result.
	EventGenerationFailed EventType = "generation.failed"

	// EventTrackingReset is sent when a path's tracking (or all tracking) was reset.
	EventTrackingReset EventType = "tracking.reset"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Path scopes the event for client filtering. Empty means every client.
	Path string `json:"-"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// TrackingResetEventData is the data payload for tracking reset events.
// An empty Path means all tracking was reset.
type TrackingResetEventData struct {
	Path string `json:"path,omitempty"`
}

// NewGenerationEvent wraps a dispatch result.
func NewGenerationEvent(result generator.Result) Event {
	eventType := EventGenerationCompleted
	if !result.Success {
		eventType = EventGenerationFailed
	}
	return Event{
		Type:      eventType,
		Data:      result,
		Path:      result.FilePath,
		Timestamp: time.Now(),
	}
}

// NewTrackingResetEvent creates a tracking reset event for path, or for all
// paths when path is empty.
func NewTrackingResetEvent(path string) Event {
	return Event{
		Type:      EventTrackingReset,
		Data:      TrackingResetEventData{Path: path},
		Path:      path,
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
