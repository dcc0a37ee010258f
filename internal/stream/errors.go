package stream

import "errors"

// Sentinel errors for stream operations.
// Use errors.Is() to check error types:
//
//	if errors.Is(err, stream.ErrDisconnected) {
//	    // connection lost, reconnect loop takes over
//	}
var (
	// ErrDialFailed indicates the WebSocket handshake did not complete.
	ErrDialFailed = errors.New("stream: dial failed")

	// ErrSubscribeFailed indicates the subscription intent could not be sent.
	ErrSubscribeFailed = errors.New("stream: subscribe failed")

	// ErrDisconnected indicates an established stream connection was lost.
	ErrDisconnected = errors.New("stream: disconnected")
)
