package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/config"
)

// Client owns the agent's outbound broker session.
//
// It wraps paho.mqtt.golang with mutual-TLS session establishment, explicit
// CONNACK validation, publish acknowledgment, and connection-state callbacks.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - The connection state is single-writer: it is mutated only from paho
//     connection callbacks and Close(); every reader gets a snapshot.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	agent  config.AgentConfig

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// Callbacks for connection events (optional, set via SetOnConnect/SetOnDisconnect).
	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	// closing marks a locally requested disconnect so the disconnect
	// callback can distinguish it from an unexpected drop.
	closing   bool
	closingMu sync.Mutex
}

// New creates a Client ready to connect.
//
// It performs every local, fail-fast step before any network action:
//  1. Validates that all three credential artifacts are present and readable
//     (ErrCredentialsMissing enumerating each absent artifact)
//  2. Builds the mutual-TLS configuration (ErrHandshake on malformed material)
//  3. Builds paho options including Last Will and Testament
//
// Parameters:
//   - cfg: MQTT session configuration
//   - agent: Device identity used for topics and status payloads
//
// Returns:
//   - *Client: Client ready for Connect
//   - error: ErrCredentialsMissing or ErrHandshake
func New(cfg config.MQTTConfig, agent config.AgentConfig) (*Client, error) {
	if err := ValidateCredentials(cfg.TLS); err != nil {
		return nil, err
	}

	tlsConfig, err := newTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	opts := buildClientOptions(cfg, tlsConfig)
	configureLWT(opts, agent.TopicNamespace, agent.DeviceID)

	c := &Client{
		cfg:   cfg,
		agent: agent,
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})

	c.client = pahomqtt.NewClient(opts)

	return c, nil
}

// Connect performs a single connection attempt and waits for the broker's
// acknowledgment.
//
// The session is not considered ready when the socket opens; readiness
// requires a successful CONNACK within the configured connect timeout.
// A refusal is translated into a specific category via ErrBrokerRejected.
//
// The caller owns retry policy for failed attempts. Once an attempt
// succeeds, drops are recovered internally with capped exponential backoff
// and unbounded retries.
//
// Returns:
//   - error: ErrConnectTimeout, ErrBrokerRejected, ErrHandshake, or a
//     wrapped transport failure
func (c *Client) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(c.cfg.ConnectTimeout()) {
		return fmt.Errorf("%w: no acknowledgment after %v", ErrConnectTimeout, c.cfg.ConnectTimeout())
	}
	if err := token.Error(); err != nil {
		return classifyConnectError(err)
	}

	// Set connected state immediately after successful connection.
	// The OnConnectHandler callback runs asynchronously and may not have
	// executed yet, so set it here to ensure IsConnected() returns true.
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return nil
}

// handleConnect is called when a connection is established, including every
// automatic reconnect.
func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	c.publishOnlineStatus()

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleDisconnect is called when the connection drops unexpectedly.
// A locally requested Close does not route through here.
func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.closingMu.Lock()
	closing := c.closing
	c.closingMu.Unlock()
	if closing {
		return
	}

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// publishOnlineStatus announces the device on its status topic, retained so
// late subscribers see the current state.
func (c *Client) publishOnlineStatus() {
	topic := Topics{}.DeviceStatus(c.agent.TopicNamespace, c.agent.DeviceID)
	payload := buildOnlinePayload(c.agent.DeviceID)
	c.client.Publish(topic, byte(c.cfg.QoS), true, payload)
}

// Close gracefully disconnects from the broker.
//
// It publishes a graceful offline status (distinct from the LWT crash
// status), waits briefly for pending operations, and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.closingMu.Lock()
	c.closing = true
	c.closingMu.Unlock()

	if c.IsConnected() {
		topic := Topics{}.DeviceStatus(c.agent.TopicNamespace, c.agent.DeviceID)
		payload := buildOfflinePayload(c.agent.DeviceID)
		token := c.client.Publish(topic, byte(c.cfg.QoS), true, payload)
		token.WaitTimeout(c.cfg.PublishTimeout())
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// HealthCheck verifies the broker session is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns a snapshot of the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// SetOnConnect sets a callback invoked when a connection is established.
// This fires on the initial connect and on every reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback invoked when the connection drops
// unexpectedly. It does not fire for a locally requested Close; the error
// describes why the connection was lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}
