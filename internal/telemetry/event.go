package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-telemetry-agent/internal/sensor"
)

// Event is the wire envelope for one sensor reading.
//
// Identity is assigned exactly once, at construction: MessageID is generated
// here and reused unchanged across every delivery attempt of the same event,
// so the broker can deduplicate at-least-once retries. Immutable after
// construction; owned by the publishing loop until handed to the queue.
type Event struct {
	DeviceID    string  `json:"device_id"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Timestamp   string  `json:"timestamp"`
	MessageID   string  `json:"message_id"`
}

// NewEvent builds an Event from a raw reading.
//
// The timestamp is ISO-8601 UTC with a trailing Z. The message id combines
// coarse time with a random discriminator: msg_<epoch-seconds>_<uuid>.
// A 4-digit discriminator cannot keep collisions negligible at realistic
// event volumes, so the random part is a full UUID.
func NewEvent(deviceID string, reading sensor.Reading, now time.Time) Event {
	return Event{
		DeviceID:    deviceID,
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		Timestamp:   now.UTC().Format(time.RFC3339),
		MessageID:   newMessageID(now),
	}
}

// newMessageID generates a unique message identifier.
func newMessageID(now time.Time) string {
	return fmt.Sprintf("msg_%d_%s", now.Unix(), uuid.NewString())
}

// Payload returns the JSON wire encoding of the event.
func (e Event) Payload() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding event %s: %w", e.MessageID, err)
	}
	return data, nil
}
