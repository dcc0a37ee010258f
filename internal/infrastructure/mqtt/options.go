package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for broker connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options from agent config.
//
// This configures:
//   - Broker URL (always ssl://, the session requires mutual TLS)
//   - Client ID for identification
//   - Clean session mode
//   - Auto-reconnect with exponential backoff for drops after a successful
//     connect; the initial connect attempt is NOT retried internally so that
//     the CONNACK reason code surfaces to the caller, which owns the
//     reconnect loop
//   - Keepalive and connect timeout
func buildClientOptions(cfg config.MQTTConfig, tlsConfig *tls.Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	brokerURL := fmt.Sprintf("ssl://%s:%d", cfg.Endpoint, cfg.Port)
	opts.AddBroker(brokerURL)

	opts.SetClientID(cfg.ClientID)

	// Clean session - start fresh on connect (no persistent session on broker)
	opts.SetCleanSession(true)

	// Reconnect-after-drop with exponential backoff up to the configured cap.
	// Initial connect failures return to the caller instead of retrying
	// silently, so the specific refusal reason is observable.
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	opts.SetConnectTimeout(cfg.ConnectTimeout())
	opts.SetKeepAlive(cfg.KeepaliveDuration())

	opts.SetTLSConfig(tlsConfig)

	return opts
}

// newTLSConfig builds the mutual-TLS configuration from the credential
// artifact paths.
//
// The broker certificate is validated against the supplied root CA, and the
// client authenticates with its own certificate/key pair. Malformed
// credential material is a handshake failure: the artifacts exist (presence
// is validated separately) but cannot complete a TLS negotiation.
func newTLSConfig(cfg config.MQTTTLSConfig) (*tls.Config, error) {
	caPEM, err := os.ReadFile(cfg.CACert)
	if err != nil {
		return nil, fmt.Errorf("%w: reading root CA: %w", ErrHandshake, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("%w: root CA contains no valid certificates", ErrHandshake)
	}

	cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("%w: loading client certificate/key pair: %w", ErrHandshake, err)
	}

	return &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tlsMinVersion,
	}, nil
}

// configureLWT sets up Last Will and Testament for offline detection.
//
// The LWT message is published by the broker if the device disconnects
// unexpectedly (crash, network failure), letting cloud consumers distinguish
// a dead device from a quiet one.
func configureLWT(opts *pahomqtt.ClientOptions, namespace, deviceID string) {
	willTopic := Topics{}.DeviceStatus(namespace, deviceID)
	willPayload := fmt.Sprintf(
		`{"status":"offline","device_id":"%s","reason":"unexpected_disconnect","timestamp":"%s"}`,
		deviceID,
		time.Now().UTC().Format(time.RFC3339),
	)

	opts.SetWill(willTopic, willPayload, 1, true)
}

// buildOnlinePayload creates the JSON payload for online status messages.
func buildOnlinePayload(deviceID string) string {
	return fmt.Sprintf(
		`{"status":"online","device_id":"%s","timestamp":"%s"}`,
		deviceID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// buildOfflinePayload creates the JSON payload for graceful offline status.
func buildOfflinePayload(deviceID string) string {
	return fmt.Sprintf(
		`{"status":"offline","device_id":"%s","reason":"graceful_shutdown","timestamp":"%s"}`,
		deviceID,
		time.Now().UTC().Format(time.RFC3339),
	)
}
