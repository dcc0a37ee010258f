package datalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File permission constants.
const (
	dirPermissions  = 0750
	filePermissions = 0600
)

// header is the first line of a freshly created log. The first four fields
// and their order are fixed; status carries the delivery outcome marker.
const header = "timestamp,device_id,temperature,humidity,status\n"

// Status marks the delivery outcome recorded with each row.
type Status string

// Delivery outcome markers.
const (
	StatusSent     Status = "sent"
	StatusBuffered Status = "buffered"
)

// Record is one append-only log entry. Rows are never mutated or deleted;
// a row reflects the outcome at the time it was written.
type Record struct {
	// Timestamp is the event timestamp, ISO-8601 UTC with trailing Z.
	Timestamp string

	// DeviceID identifies the publishing device.
	DeviceID string

	// Temperature in °C, written with 2 decimal places.
	Temperature float64

	// Humidity in %RH, written with 1 decimal place.
	Humidity float64

	// Status is the delivery outcome at time of write.
	Status Status
}

// Log is the append-only durable record of every telemetry event.
//
// The log is single-writer: Append serialises all writes behind a mutex and
// issues each record as one atomic write of one complete line, so an external
// reader tailing the file never observes a partial row.
type Log struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// Open opens the durable log at path, creating it with the fixed header if
// it does not exist. The parent directory is created if necessary.
//
// Returns:
//   - *Log: Open log ready for appends
//   - error: If the directory, file, or header cannot be written
func Open(path string) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermissions)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrOpen, path, err)
	}

	// Header is written before any data row can be appended.
	if fresh {
		if _, err := file.WriteString(header); err != nil {
			file.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, fmt.Errorf("%w: writing header: %w", ErrOpen, err)
		}
	}

	return &Log{path: path, file: file}, nil
}

// Append writes one complete record as a single atomic write.
//
// Temperature is formatted with 2 decimal places and humidity with 1,
// matching the wire payload precision.
//
// Returns:
//   - error: ErrAppend-wrapped failure; the caller reports it but must not
//     treat it as fatal (broker delivery is the primary goal, the local log
//     is a safety net)
func (l *Log) Append(rec Record) error {
	line := fmt.Sprintf("%s,%s,%.2f,%.1f,%s\n",
		rec.Timestamp,
		rec.DeviceID,
		rec.Temperature,
		rec.Humidity,
		rec.Status,
	)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("%w: log is closed", ErrAppend)
	}

	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}

	return nil
}

// Path returns the filesystem path of the log file.
func (l *Log) Path() string {
	return l.path
}

// Close closes the underlying file. Appends after Close fail with ErrAppend.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("closing log: %w", err)
	}
	return nil
}
