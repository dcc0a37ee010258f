// Package stream implements the agent's inbound WebSocket subscription.
//
// A Subscriber dials the streaming endpoint, registers interest in one
// device by sending a subscription intent, and forwards every inbound
// message to a caller-supplied handler in arrival order. The connection
// is long-lived; on loss the subscriber redials with exponential backoff
// and re-registers, since the server holds no subscription state across
// connections.
//
// The stream is read-only and completely independent of the MQTT publish
// path: either side can be up, down, or reconnecting without affecting
// the other.
package stream
