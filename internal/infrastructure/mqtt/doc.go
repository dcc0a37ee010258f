// Package mqtt owns the agent's outbound broker session.
//
// This package manages:
//   - Mutual-TLS session establishment against the cloud broker
//   - Credential artifact validation before any network action
//   - Explicit CONNACK validation with reason-code classification
//   - Acknowledged publishing with a per-publish timeout
//   - Connection-state callbacks and automatic reconnection
//
// # Session lifecycle
//
// New() performs every fail-fast local step: it verifies that the root CA,
// client certificate, and private key are all present and readable
// (reporting every missing artifact at once), and builds the mutual-TLS
// configuration. Connect() then performs one connection attempt and blocks
// until the broker acknowledges it or the connect timeout elapses; an open
// socket alone never counts as ready.
//
// Initial connect attempts are not retried internally; the caller drives
// retries with its own backoff so refusal reasons stay observable. After a
// successful connect, drops are recovered automatically with capped
// exponential backoff and unbounded retries.
//
// # Error taxonomy
//
//   - ErrCredentialsMissing: fatal at startup, lists every absent artifact
//   - ErrHandshake: TLS negotiation failure
//   - ErrConnectTimeout: no CONNACK within the configured timeout
//   - ErrBrokerRejected: CONNACK refusal, wrapped with the specific category
//   - ErrPublishFailed: publish unacknowledged; the event is buffered, never lost
//
// # Usage
//
//	client, err := mqtt.New(cfg.MQTT, cfg.Agent)
//	if err != nil {
//	    // ErrCredentialsMissing is the only fatal startup error
//	}
//	if err := client.Connect(); err != nil {
//	    // retry with backoff; the publishing loop buffers meanwhile
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.DeviceData(cfg.Agent.TopicNamespace, cfg.Agent.DeviceID)
//	err = client.Publish(topic, payload, byte(cfg.MQTT.QoS), false)
package mqtt
