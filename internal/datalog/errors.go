package datalog

import "errors"

// Domain-specific errors for durable log operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrOpen is returned when the log file cannot be created or opened.
	ErrOpen = errors.New("datalog: open failed")

	// ErrAppend is returned when a record cannot be written. Callers report
	// it loudly but never treat it as fatal to the publishing loop.
	ErrAppend = errors.New("datalog: append failed")
)
