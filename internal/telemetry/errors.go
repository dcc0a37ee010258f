package telemetry

import "errors"

// Sentinel errors for telemetry operations.
// Use errors.Is() to check error types:
//
//	if errors.Is(err, telemetry.ErrBufferStore) {
//	    // sqlite buffer unavailable, event recorded in CSV only
//	}
var (
	// ErrBufferStore indicates the local buffer could not accept or return
	// an event. The durable CSV log is the fallback record in this case.
	ErrBufferStore = errors.New("telemetry: buffer store failure")

	// ErrRecordFailed indicates the durable CSV log rejected an append.
	// The delivery outcome of the event is unaffected.
	ErrRecordFailed = errors.New("telemetry: durable record failed")

	// ErrDrainIncomplete indicates a replay pass stopped before the buffer
	// was empty, usually because connectivity dropped again mid-drain.
	ErrDrainIncomplete = errors.New("telemetry: drain incomplete")
)
