// Package telemetry implements the capture-to-delivery pipeline of the agent.
//
// The pipeline has three moving parts:
//
//   - Event: the immutable wire envelope. Identity (message_id) and the
//     capture timestamp are assigned once, at construction, and survive
//     buffering and replay unchanged.
//
//   - Queue: routes each event to the broker or, when no session is up or
//     the publish fails, to the SQLite buffer. Every submitted event
//     produces exactly one row in the durable CSV log, marked sent or
//     buffered. Drain replays buffered events oldest-first once a session
//     returns.
//
//   - Publisher: the fixed-interval loop that reads the sensor, builds the
//     event, and submits it. One bad cycle never stops the loop.
//
// Delivery is at-least-once end to end: QoS 1 on the live path, and replay
// of the buffer on reconnect. Consumers deduplicate on message_id.
package telemetry
