package events

import (
	"strconv"

	"github.com/harutok/counts-service/internal/types"
)

// Publisher interface for publishing events
type Publisher interface {
	PublishCountRecorded(category string, userID int64, field, day string)
}

// WebSocketHub interface for the WebSocket hub
type WebSocketHub interface {
	BroadcastToUser(userID string, event *types.Event)
	IsUserConnected(userID string) bool
}

// EventPublisher implements the Publisher interface
type EventPublisher struct {
	hub WebSocketHub
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{
		hub: hub,
	}
}

// PublishCountRecorded notifies subscribers of a user's counts that one field
// was just incremented. Best-effort: nothing is sent when nobody watches.
func (p *EventPublisher) PublishCountRecorded(category string, userID int64, field, day string) {
	subject := strconv.FormatInt(userID, 10)

	if !p.hub.IsUserConnected(subject) {
		return
	}

	event := types.NewEvent(types.EventCountRecorded, types.CountRecordedEvent{
		Category: category,
		UserID:   userID,
		Field:    field,
		Day:      day,
	})

	p.hub.BroadcastToUser(subject, event)
}
