package mqtt

import "errors"

// Domain-specific errors for the broker session.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrCredentialsMissing is returned when one or more credential artifacts
	// (root CA, client certificate, private key) are absent or unreadable.
	// The error message enumerates every missing artifact, not just the first.
	// This is the only fatal error in the agent: no connection is attempted
	// with incomplete credentials.
	ErrCredentialsMissing = errors.New("mqtt: credentials missing")

	// ErrHandshake is returned when TLS negotiation fails, including
	// malformed local credential material.
	ErrHandshake = errors.New("mqtt: TLS handshake failed")

	// ErrConnectTimeout is returned when no broker acknowledgment arrives
	// within the configured connect timeout. A socket being open is not
	// enough; the session is ready only after a successful CONNACK.
	ErrConnectTimeout = errors.New("mqtt: connect timeout waiting for broker acknowledgment")

	// ErrBrokerRejected is returned when the broker acknowledges the connect
	// with a non-success reason code. The wrapped reason identifies the
	// specific category (protocol mismatch, identifier rejected, broker
	// unavailable, bad credentials, not authorised).
	ErrBrokerRejected = errors.New("mqtt: broker rejected connection")

	// ErrPublishFailed is returned when a publish is not acknowledged within
	// the per-publish timeout or the transport reports an error. Recoverable
	// at the event level: the event is buffered locally, never discarded.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrNotConnected is returned when attempting operations on a
	// disconnected session.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrInvalidQoS is returned when an invalid QoS level is specified.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
