package telemetry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nerrad567/gray-telemetry-agent/internal/datalog"
	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/logging"
)

// drainBatchSize bounds how many buffered events one replay query fetches.
const drainBatchSize = 100

// Outcome is the delivery result of a single Submit.
type Outcome string

// Submit outcomes.
const (
	// Delivered means the broker acknowledged the publish.
	Delivered Outcome = "delivered"

	// Buffered means the event was held locally for later replay.
	Buffered Outcome = "buffered"
)

// Transport is the broker-facing surface the queue publishes through.
// Satisfied by *mqtt.Client; abstracted for unit testing.
type Transport interface {
	// Publish sends one payload and blocks until the broker acknowledges
	// it or the publish timeout elapses.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// IsConnected reports whether a broker session is currently up.
	IsConnected() bool
}

// Queue routes each event to the broker when a session is up, or to the
// local buffer when it is not, and writes exactly one durable log row per
// submitted event either way.
//
// Thread Safety:
//   - Submit and Drain are safe to call concurrently. Drain never writes
//     to the durable log, so replay cannot duplicate rows.
type Queue struct {
	transport Transport
	buffer    Buffer
	log       *datalog.Log
	logger    *logging.Logger

	topic string
	qos   byte

	delivered atomic.Uint64
	buffered  atomic.Uint64

	// drainMu serialises replay passes; overlapping drains would race on
	// the same pending rows.
	drainMu sync.Mutex
}

// NewQueue creates a queue publishing to the given topic at the given QoS.
func NewQueue(transport Transport, buffer Buffer, log *datalog.Log, logger *logging.Logger, topic string, qos byte) *Queue {
	return &Queue{
		transport: transport,
		buffer:    buffer,
		log:       log,
		logger:    logger.With("component", "queue"),
		topic:     topic,
		qos:       qos,
	}
}

// Submit attempts to deliver one event and records the outcome.
//
// Delivery failure is not an error: the event is buffered and the outcome
// says so. The returned error reports local persistence problems only
// (buffer store or durable log); the outcome stands regardless.
func (q *Queue) Submit(ctx context.Context, event Event) (Outcome, error) {
	outcome := Buffered

	if q.transport.IsConnected() {
		payload, err := event.Payload()
		if err == nil {
			err = q.transport.Publish(q.topic, payload, q.qos, false)
		}
		if err == nil {
			outcome = Delivered
		} else {
			q.logger.Warn("publish failed, buffering event",
				"message_id", event.MessageID,
				"error", err,
			)
		}
	}

	var persistErr error
	if outcome == Buffered {
		if err := q.buffer.Put(ctx, event); err != nil {
			// The CSV row below is now the only record of this event.
			q.logger.Error("buffer store rejected event",
				"message_id", event.MessageID,
				"error", err,
			)
			persistErr = err
		}
	}

	// Exactly one row per submitted event, regardless of outcome.
	rec := datalog.Record{
		Timestamp:   event.Timestamp,
		DeviceID:    event.DeviceID,
		Temperature: event.Temperature,
		Humidity:    event.Humidity,
		Status:      recordStatus(outcome),
	}
	if err := q.log.Append(rec); err != nil {
		q.logger.Error("durable log append failed",
			"message_id", event.MessageID,
			"error", err,
		)
		if persistErr == nil {
			persistErr = fmt.Errorf("%w: %w", ErrRecordFailed, err)
		}
	}

	switch outcome {
	case Delivered:
		q.delivered.Add(1)
	case Buffered:
		q.buffered.Add(1)
	}

	return outcome, persistErr
}

// Drain replays buffered events oldest-first while the session stays up.
//
// Each replayed event keeps its original MessageID and timestamp, so the
// broker sees the identity assigned at capture time. Replay stops at the
// first publish failure and returns ErrDrainIncomplete; the remaining rows
// wait for the next connection. The durable log is not touched: a row was
// already written when the event was first submitted.
func (q *Queue) Drain(ctx context.Context) error {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	replayed := 0
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrDrainIncomplete, err)
		}
		if !q.transport.IsConnected() {
			return fmt.Errorf("%w: session lost after %d events", ErrDrainIncomplete, replayed)
		}

		pending, err := q.buffer.Pending(ctx, drainBatchSize)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDrainIncomplete, err)
		}
		if len(pending) == 0 {
			if replayed > 0 {
				q.logger.Info("buffer drained", "replayed", replayed)
			}
			return nil
		}

		for _, ev := range pending {
			payload, err := ev.Payload()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrDrainIncomplete, err)
			}
			if err := q.transport.Publish(q.topic, payload, q.qos, false); err != nil {
				q.logger.Warn("replay publish failed, deferring remainder",
					"message_id", ev.MessageID,
					"replayed", replayed,
					"error", err,
				)
				return fmt.Errorf("%w: %w", ErrDrainIncomplete, err)
			}
			if err := q.buffer.MarkDelivered(ctx, ev.ID); err != nil {
				// Replay continues; worst case the row is replayed again,
				// which at-least-once delivery already permits.
				q.logger.Error("failed to mark replayed event",
					"message_id", ev.MessageID,
					"error", err,
				)
			}
			replayed++
			q.delivered.Add(1)
		}
	}
}

// Delivered returns the number of events acknowledged by the broker,
// including replayed ones.
func (q *Queue) Delivered() uint64 {
	return q.delivered.Load()
}

// Buffered returns the number of events diverted to the local buffer.
func (q *Queue) Buffered() uint64 {
	return q.buffered.Load()
}

// recordStatus maps a delivery outcome to its durable log marker.
func recordStatus(o Outcome) datalog.Status {
	if o == Delivered {
		return datalog.StatusSent
	}
	return datalog.StatusBuffered
}
