// Package sse streams live bookshelf activity to browsers as Server-Sent Events.
package sse

import (
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventConnected is the first event on every stream.
	EventConnected EventType = "connected"
	// EventActivityCreated carries a newly recorded activity.
	EventActivityCreated EventType = "activity.created"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// ConnectedEventData identifies the stream to its client.
type ConnectedEventData struct {
	ClientID string `json:"client_id"`
}

// ActivityEventData is the data payload for activity events.
type ActivityEventData struct {
	Activity *domain.Activity `json:"activity"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewConnectedEvent creates the greeting sent when a client connects.
func NewConnectedEvent(clientID string) Event {
	return Event{
		Type:      EventConnected,
		Data:      ConnectedEventData{ClientID: clientID},
		Timestamp: time.Now(),
	}
}

// NewActivityEvent creates an activity.created event.
func NewActivityEvent(a *domain.Activity) Event {
	return Event{
		Type:      EventActivityCreated,
		Data:      ActivityEventData{Activity: a},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}
