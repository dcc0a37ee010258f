package stream

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-telemetry-agent/internal/backoff"
	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/config"
	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/logging"
)

// Handler receives one inbound stream message. Handlers are invoked
// synchronously from the read loop, in arrival order; a slow handler
// delays subsequent messages rather than reordering them.
type Handler func(message []byte)

// subscribeIntent is the registration message sent after every connect.
type subscribeIntent struct {
	Action   string `json:"action"`
	DeviceID string `json:"device_id"`
}

// subscribeAction identifies this connection as a device-scoped subscriber.
const subscribeAction = "subscribeDevice"

// Subscriber maintains the inbound WebSocket subscription for one device.
//
// The subscription is fully independent of the MQTT publish session: it
// dials its own endpoint, fails and recovers on its own schedule, and
// shares no state with the publisher. Run blocks for the lifetime of the
// agent and owns the reconnect loop.
type Subscriber struct {
	cfg      config.StreamConfig
	deviceID string
	logger   *logging.Logger
}

// NewSubscriber creates a subscriber for the given device.
func NewSubscriber(cfg config.StreamConfig, deviceID string, logger *logging.Logger) *Subscriber {
	return &Subscriber{
		cfg:      cfg,
		deviceID: deviceID,
		logger:   logger.With("component", "stream"),
	}
}

// Run connects, subscribes, and forwards messages until ctx is cancelled.
//
// Connection loss is handled internally: the loop redials with exponential
// backoff and re-sends the subscription intent on every new connection.
// The backoff resets after each successful subscribe, so a stable period
// followed by an outage retries quickly again. Returns nil on cancellation.
func (s *Subscriber) Run(ctx context.Context, handler Handler) error {
	retry := backoff.New(backoff.Policy{
		Initial: time.Duration(s.cfg.Reconnect.InitialDelay) * time.Second,
		Max:     time.Duration(s.cfg.Reconnect.MaxDelay) * time.Second,
	})

	for {
		err := s.listen(ctx, handler, retry)
		if ctx.Err() != nil {
			s.logger.Info("stream subscriber stopped")
			return nil
		}

		delay := retry.Next()
		s.logger.Warn("stream connection lost, reconnecting",
			"delay", delay,
			"attempts", retry.Attempts(),
			"error", err,
		)

		select {
		case <-ctx.Done():
			s.logger.Info("stream subscriber stopped")
			return nil
		case <-time.After(delay):
		}
	}
}

// listen runs one connection: dial, subscribe, then read until failure.
func (s *Subscriber) listen(ctx context.Context, handler Handler, retry *backoff.Backoff) error {
	endpoint, err := s.endpointURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.DialTimeout(),
	}

	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w: %s (status %d)", ErrDialFailed, endpoint, resp.StatusCode)
		}
		return fmt.Errorf("%w: %s: %w", ErrDialFailed, endpoint, err)
	}
	defer conn.Close() //nolint:errcheck // Connection teardown

	// Registration is per-connection: the server only routes messages for
	// this device after seeing the intent.
	intent := subscribeIntent{Action: subscribeAction, DeviceID: s.deviceID}
	if err := conn.WriteJSON(intent); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	retry.Reset()
	s.logger.Info("stream subscribed", "endpoint", endpoint, "device_id", s.deviceID)

	// Unblock ReadMessage when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close() //nolint:errcheck // Forced teardown on cancellation
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("%w: closed by server", ErrDisconnected)
			}
			return fmt.Errorf("%w: %w", ErrDisconnected, err)
		}
		handler(message)
	}
}

// endpointURL normalises the configured URL to a ws/wss scheme.
func (s *Subscriber) endpointURL() (string, error) {
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("%w: parsing url %q: %w", ErrDialFailed, s.cfg.URL, err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}

	return u.String(), nil
}
