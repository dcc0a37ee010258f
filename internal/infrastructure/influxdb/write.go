package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-telemetry-agent/internal/sensor"
)

// WriteReading mirrors one captured sensor reading into the time-series store.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Failures surface through the SetOnError callback and never affect the
// primary delivery path. Safe to call while disconnected (no-op).
//
// Parameters:
//   - deviceID: Identifier of the publishing device
//   - reading: The captured temperature and humidity values
//   - capturedAt: The capture timestamp, matching the published event
func (c *Client) WriteReading(deviceID string, reading sensor.Reading, capturedAt time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"telemetry",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"temperature": reading.Temperature,
			"humidity":    reading.Humidity,
		},
		capturedAt,
	)

	c.writeAPI.WritePoint(point)
}
