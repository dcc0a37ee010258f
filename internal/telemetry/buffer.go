package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Buffer stores events that could not be delivered, for later replay.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Buffer interface {
	// Put stores one undelivered event. The event's MessageID is preserved
	// so replay publishes the same identity the broker would have seen.
	Put(ctx context.Context, event Event) error

	// Pending returns up to limit undelivered events, oldest first.
	Pending(ctx context.Context, limit int) ([]BufferedEvent, error)

	// MarkDelivered records that the buffered row with the given id has
	// been replayed successfully. Marked rows are never returned again.
	MarkDelivered(ctx context.Context, id string) error

	// PendingCount returns the number of undelivered events.
	PendingCount(ctx context.Context) (int, error)
}

// BufferedEvent is an Event held in the buffer, keyed by its storage row id.
type BufferedEvent struct {
	ID string
	Event
}

// SQLiteBuffer implements Buffer using SQLite.
//
// Delivered rows are retained with a delivered_at timestamp rather than
// deleted, so the buffer doubles as a local audit of replayed events.
type SQLiteBuffer struct {
	db *sql.DB
}

const createBufferSchema = `
CREATE TABLE IF NOT EXISTS event_buffer (
	id TEXT PRIMARY KEY,
	message_id TEXT NOT NULL,
	device_id TEXT NOT NULL,
	temperature REAL NOT NULL,
	humidity REAL NOT NULL,
	event_timestamp TEXT NOT NULL,
	buffered_at TEXT NOT NULL,
	delivered_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_event_buffer_pending
	ON event_buffer(buffered_at) WHERE delivered_at IS NULL;
`

// NewSQLiteBuffer creates a SQLite-backed buffer, creating the schema if it
// does not exist. The db parameter should be an open SQLite connection.
func NewSQLiteBuffer(ctx context.Context, db *sql.DB) (*SQLiteBuffer, error) {
	if _, err := db.ExecContext(ctx, createBufferSchema); err != nil {
		return nil, fmt.Errorf("%w: creating schema: %w", ErrBufferStore, err)
	}
	return &SQLiteBuffer{db: db}, nil
}

// Put stores one undelivered event.
func (b *SQLiteBuffer) Put(ctx context.Context, event Event) error {
	query := `
		INSERT INTO event_buffer
			(id, message_id, device_id, temperature, humidity, event_timestamp, buffered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := b.db.ExecContext(ctx, query,
		uuid.NewString(),
		event.MessageID,
		event.DeviceID,
		event.Temperature,
		event.Humidity,
		event.Timestamp,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: storing event %s: %w", ErrBufferStore, event.MessageID, err)
	}
	return nil
}

// Pending returns up to limit undelivered events, oldest first.
func (b *SQLiteBuffer) Pending(ctx context.Context, limit int) ([]BufferedEvent, error) {
	query := `
		SELECT id, message_id, device_id, temperature, humidity, event_timestamp
		FROM event_buffer
		WHERE delivered_at IS NULL
		ORDER BY buffered_at, id
		LIMIT ?`

	rows, err := b.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying pending: %w", ErrBufferStore, err)
	}
	defer rows.Close() //nolint:errcheck // Read-only result set

	var events []BufferedEvent
	for rows.Next() {
		var ev BufferedEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.MessageID,
			&ev.DeviceID,
			&ev.Temperature,
			&ev.Humidity,
			&ev.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning pending row: %w", ErrBufferStore, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating pending rows: %w", ErrBufferStore, err)
	}

	return events, nil
}

// MarkDelivered records a successful replay of the buffered row.
func (b *SQLiteBuffer) MarkDelivered(ctx context.Context, id string) error {
	query := `UPDATE event_buffer SET delivered_at = ? WHERE id = ? AND delivered_at IS NULL`

	result, err := b.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("%w: marking %s delivered: %w", ErrBufferStore, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking update result: %w", ErrBufferStore, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: no pending row %s", ErrBufferStore, id)
	}

	return nil
}

// PendingCount returns the number of undelivered events.
func (b *SQLiteBuffer) PendingCount(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM event_buffer WHERE delivered_at IS NULL`
	if err := b.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting pending: %w", ErrBufferStore, err)
	}
	return count, nil
}
