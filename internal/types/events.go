package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventCountRecorded EventType = "count.recorded"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// CountRecordedEvent represents a successful count-up for a user's day
type CountRecordedEvent struct {
	Category string `json:"category"`
	UserID   int64  `json:"user_id"`
	Field    string `json:"field"`
	Day      string `json:"day"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
