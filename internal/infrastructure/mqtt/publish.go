package mqtt

import (
	"fmt"
)

// Maximum payload size for MQTT messages (128KB).
// Telemetry events are tiny; anything larger indicates a bug upstream.
const maxPayloadSize = 128 << 10

// Publish sends a message to the specified topic with at-least-once
// semantics at QoS 1 and above.
//
// The call blocks until the broker acknowledges the publish or the
// per-publish timeout elapses; only an acknowledged publish returns nil.
// The transport never silently drops on transient congestion: a timeout or
// token error is reported as ErrPublishFailed so the caller can buffer the
// event locally.
//
// Parameters:
//   - topic: The topic to publish to
//   - payload: The message payload (JSON)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message
//
// Returns:
//   - error: nil on acknowledged delivery, or a wrapped error
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(c.cfg.PublishTimeout()) {
		return fmt.Errorf("%w: no acknowledgment after %v", ErrPublishFailed, c.cfg.PublishTimeout())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
