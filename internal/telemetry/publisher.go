package telemetry

import (
	"context"
	"time"

	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/logging"
	"github.com/nerrad567/gray-telemetry-agent/internal/sensor"
)

// Mirror receives a copy of each captured reading for secondary storage.
// Satisfied by the InfluxDB client; optional and fire-and-forget, a mirror
// failure never affects delivery or the durable log.
type Mirror interface {
	WriteReading(deviceID string, reading sensor.Reading, capturedAt time.Time)
}

// Publisher runs the fixed-interval capture-and-submit loop.
//
// Each cycle reads the sensor, stamps the event, and hands it to the queue.
// A failed cycle is logged and skipped; the loop itself only stops when its
// context is cancelled.
type Publisher struct {
	producer sensor.Producer
	queue    *Queue
	mirror   Mirror
	logger   *logging.Logger

	deviceID string
	interval time.Duration

	now func() time.Time
}

// NewPublisher creates a publishing loop for the given device.
// mirror may be nil when no secondary store is configured.
func NewPublisher(producer sensor.Producer, queue *Queue, mirror Mirror, logger *logging.Logger, deviceID string, interval time.Duration) *Publisher {
	return &Publisher{
		producer: producer,
		queue:    queue,
		mirror:   mirror,
		logger:   logger.With("component", "publisher"),
		deviceID: deviceID,
		interval: interval,
		now:      time.Now,
	}
}

// Run executes cycles at a fixed rate until ctx is cancelled.
//
// The first cycle runs immediately. Subsequent cycles are paced by a
// time.Ticker, so the schedule does not drift by the duration of each
// cycle's own work. Returns nil on cancellation.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("publishing loop started",
		"device_id", p.deviceID,
		"interval", p.interval,
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.cycle(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("publishing loop stopped",
				"delivered", p.queue.Delivered(),
				"buffered", p.queue.Buffered(),
			)
			return nil
		case <-ticker.C:
		}
	}
}

// cycle captures one reading and submits it. Failures are contained here.
func (p *Publisher) cycle(ctx context.Context) {
	reading, err := p.producer.Read()
	if err != nil {
		p.logger.Error("sensor read failed, skipping cycle", "error", err)
		return
	}

	capturedAt := p.now()
	event := NewEvent(p.deviceID, reading, capturedAt)

	outcome, err := p.queue.Submit(ctx, event)
	if err != nil {
		p.logger.Error("event persistence degraded",
			"message_id", event.MessageID,
			"outcome", outcome,
			"error", err,
		)
	}

	p.logger.Info("event submitted",
		"message_id", event.MessageID,
		"outcome", outcome,
		"temperature", reading.Temperature,
		"humidity", reading.Humidity,
	)

	if p.mirror != nil {
		p.mirror.WriteReading(p.deviceID, reading, capturedAt)
	}
}
