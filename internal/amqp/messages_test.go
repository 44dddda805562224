package amqp

import (
	"testing"
	"time"
)

func TestEventChangeMessage_JSONRoundTrip(t *testing.T) {
	msg := NewEventChangeMessage(42, ActionCompleted, true, "2024-06-15")
	if msg.Timestamp.IsZero() {
		t.Fatal("NewEventChangeMessage() left timestamp unset")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := EventChangeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("EventChangeMessageFromJSON() error = %v", err)
	}
	if got.ID != 42 || got.Action != ActionCompleted || !got.Completed || got.Date != "2024-06-15" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Errorf("timestamp mismatch: got %v, want %v", got.Timestamp, msg.Timestamp)
	}
}

func TestEventChangeMessageFromJSON_Invalid(t *testing.T) {
	if _, err := EventChangeMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid payload")
	}
}
