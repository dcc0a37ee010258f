package telemetry

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/nerrad567/gray-telemetry-agent/internal/sensor"
)

func TestNewEvent_Fields(t *testing.T) {
	capturedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	reading := sensor.Reading{Temperature: 24.51, Humidity: 48.3}

	event := NewEvent("device-042", reading, capturedAt)

	if event.DeviceID != "device-042" {
		t.Errorf("DeviceID = %q, want %q", event.DeviceID, "device-042")
	}
	if event.Temperature != 24.51 {
		t.Errorf("Temperature = %v, want 24.51", event.Temperature)
	}
	if event.Humidity != 48.3 {
		t.Errorf("Humidity = %v, want 48.3", event.Humidity)
	}
	if event.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("Timestamp = %q, want %q", event.Timestamp, "2026-03-14T09:26:53Z")
	}
}

func TestNewEvent_TimestampConvertsToUTC(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	capturedAt := time.Date(2026, 3, 14, 10, 26, 53, 0, zone)

	event := NewEvent("device-042", sensor.Reading{}, capturedAt)

	if event.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("Timestamp = %q, want UTC %q", event.Timestamp, "2026-03-14T09:26:53Z")
	}
}

func TestNewEvent_MessageIDFormat(t *testing.T) {
	capturedAt := time.Unix(1773480413, 0)

	event := NewEvent("device-042", sensor.Reading{}, capturedAt)

	pattern := regexp.MustCompile(`^msg_1773480413_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	if !pattern.MatchString(event.MessageID) {
		t.Errorf("MessageID = %q, want match for %s", event.MessageID, pattern)
	}
}

func TestNewEvent_MessageIDsUnique(t *testing.T) {
	// High-rate capture in the same epoch second must still yield
	// distinct identifiers.
	capturedAt := time.Now()
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		event := NewEvent("device-042", sensor.Reading{}, capturedAt)
		if _, dup := seen[event.MessageID]; dup {
			t.Fatalf("duplicate MessageID after %d events: %s", i, event.MessageID)
		}
		seen[event.MessageID] = struct{}{}
	}
}

func TestEventPayload_WireFields(t *testing.T) {
	event := NewEvent("device-042", sensor.Reading{Temperature: 26.0, Humidity: 51.5}, time.Now())

	payload, err := event.Payload()
	if err != nil {
		t.Fatalf("Payload() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	for _, field := range []string{"device_id", "temperature", "humidity", "timestamp", "message_id"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("payload missing field %q", field)
		}
	}
	if len(decoded) != 5 {
		t.Errorf("payload has %d fields, want 5", len(decoded))
	}
	if decoded["device_id"] != "device-042" {
		t.Errorf("device_id = %v, want device-042", decoded["device_id"])
	}
}
