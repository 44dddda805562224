package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried on the change feed.
const (
	ActionCreated   = "created"
	ActionDeleted   = "deleted"
	ActionCompleted = "completed"
)

// EventChangeMessage is a lightweight notification that an event changed.
// Date is the event's day in YYYY-MM-DD form so consumers can scope work to
// the affected month; it may be empty when the row was already gone.
// Consumers that need the full row fetch it from the store by id.
type EventChangeMessage struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Completed bool      `json:"completed,omitempty"`
	Date      string    `json:"date,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEventChangeMessage creates a change message stamped with the current time.
func NewEventChangeMessage(id int64, action string, completed bool, date string) *EventChangeMessage {
	return &EventChangeMessage{
		ID:        id,
		Action:    action,
		Completed: completed,
		Date:      date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *EventChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventChangeMessageFromJSON creates a message from JSON bytes.
func EventChangeMessageFromJSON(data []byte) (*EventChangeMessage, error) {
	var msg EventChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
