package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the telemetry agent.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Agent    AgentConfig    `yaml:"agent"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Stream   StreamConfig   `yaml:"stream"`
	Storage  StorageConfig  `yaml:"storage"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AgentConfig contains device identity and publishing cadence.
type AgentConfig struct {
	// DeviceID uniquely identifies this device instance. Required.
	DeviceID string `yaml:"device_id"`

	// TopicNamespace is the prefix for all published topics.
	// The data topic is <namespace>/data/<device_id>.
	TopicNamespace string `yaml:"topic_namespace"`

	// PublishInterval is the publishing cycle period in seconds.
	PublishInterval int `yaml:"publish_interval"`
}

// MQTTConfig contains broker connection settings for the publish session.
type MQTTConfig struct {
	Endpoint  string              `yaml:"endpoint"`
	Port      int                 `yaml:"port"`
	ClientID  string              `yaml:"client_id"`
	Keepalive int                 `yaml:"keepalive"`
	QoS       int                 `yaml:"qos"`
	TLS       MQTTTLSConfig       `yaml:"tls"`
	Timeouts  MQTTTimeoutConfig   `yaml:"timeouts"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTTLSConfig contains the mutual-TLS credential artifact paths.
// All three artifacts are required before any connection is attempted.
type MQTTTLSConfig struct {
	CACert     string `yaml:"ca_cert"`
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
}

// MQTTTimeoutConfig contains connection and publish timeouts in seconds.
type MQTTTimeoutConfig struct {
	Connect int `yaml:"connect"`
	Publish int `yaml:"publish"`
}

// MQTTReconnectConfig contains reconnection backoff settings in seconds.
// Retry count is unbounded; the agent never gives up on a transient outage.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// StreamConfig contains settings for the inbound streaming subscription.
type StreamConfig struct {
	Enabled          bool                `yaml:"enabled"`
	URL              string              `yaml:"url"`
	HandshakeTimeout int                 `yaml:"handshake_timeout"`
	Reconnect        MQTTReconnectConfig `yaml:"reconnect"`
}

// StorageConfig contains local persistence settings.
type StorageConfig struct {
	// CSVPath is the append-only durable log of every telemetry event.
	CSVPath string `yaml:"csv_path"`

	// Buffer holds the SQLite store for events that could not be delivered.
	Buffer BufferConfig `yaml:"buffer"`
}

// BufferConfig contains SQLite buffer store settings.
type BufferConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains settings for the optional local telemetry mirror.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYAGENT_SECTION_KEY
// For example: GRAYAGENT_MQTT_ENDPOINT, GRAYAGENT_DEVICE_ID
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	// Client ID defaults to the device ID when not set explicitly.
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = cfg.Agent.DeviceID
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			TopicNamespace:  "smaket/iot",
			PublishInterval: 5,
		},
		MQTT: MQTTConfig{
			Port:      8883,
			Keepalive: 60,
			QoS:       1,
			Timeouts: MQTTTimeoutConfig{
				Connect: 10,
				Publish: 5,
			},
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Stream: StreamConfig{
			Enabled:          false,
			HandshakeTimeout: 10,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Storage: StorageConfig{
			CSVPath: "./data/telemetry_log.csv",
			Buffer: BufferConfig{
				Path:        "./data/buffer.db",
				WALMode:     true,
				BusyTimeout: 5,
			},
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYAGENT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Agent
	if v := os.Getenv("GRAYAGENT_DEVICE_ID"); v != "" {
		cfg.Agent.DeviceID = v
	}

	// MQTT
	if v := os.Getenv("GRAYAGENT_MQTT_ENDPOINT"); v != "" {
		cfg.MQTT.Endpoint = v
	}
	if v := os.Getenv("GRAYAGENT_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Port = port
		}
	}
	if v := os.Getenv("GRAYAGENT_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.ClientID = v
	}

	// Stream
	if v := os.Getenv("GRAYAGENT_STREAM_URL"); v != "" {
		cfg.Stream.URL = v
	}

	// Storage
	if v := os.Getenv("GRAYAGENT_STORAGE_CSV_PATH"); v != "" {
		cfg.Storage.CSVPath = v
	}

	// InfluxDB
	if v := os.Getenv("GRAYAGENT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Agent validation
	if c.Agent.DeviceID == "" {
		errs = append(errs, "agent.device_id is required")
	}
	if c.Agent.TopicNamespace == "" {
		errs = append(errs, "agent.topic_namespace is required")
	}
	if c.Agent.PublishInterval < 1 {
		errs = append(errs, "agent.publish_interval must be at least 1 second")
	}

	// MQTT validation
	if c.MQTT.Endpoint == "" {
		errs = append(errs, "mqtt.endpoint is required")
	}
	if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
		errs = append(errs, "mqtt.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Reconnect.InitialDelay < 1 {
		errs = append(errs, "mqtt.reconnect.initial_delay must be at least 1 second")
	}
	if c.MQTT.Reconnect.MaxDelay < c.MQTT.Reconnect.InitialDelay {
		errs = append(errs, "mqtt.reconnect.max_delay must not be less than initial_delay")
	}

	// Credential paths are required here; readability is checked by the
	// mqtt package immediately before connecting.
	if c.MQTT.TLS.CACert == "" {
		errs = append(errs, "mqtt.tls.ca_cert is required")
	}
	if c.MQTT.TLS.ClientCert == "" {
		errs = append(errs, "mqtt.tls.client_cert is required")
	}
	if c.MQTT.TLS.ClientKey == "" {
		errs = append(errs, "mqtt.tls.client_key is required")
	}

	// Stream validation
	if c.Stream.Enabled && c.Stream.URL == "" {
		errs = append(errs, "stream.url is required when stream.enabled is true")
	}

	// Storage validation
	if c.Storage.CSVPath == "" {
		errs = append(errs, "storage.csv_path is required")
	}
	if c.Storage.Buffer.Path == "" {
		errs = append(errs, "storage.buffer.path is required")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb.enabled is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Interval returns the publishing cycle period as a Duration.
func (c *AgentConfig) Interval() time.Duration {
	return time.Duration(c.PublishInterval) * time.Second
}

// ConnectTimeout returns the MQTT connect timeout as a Duration.
func (c *MQTTConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.Timeouts.Connect) * time.Second
}

// PublishTimeout returns the per-publish acknowledgment timeout as a Duration.
func (c *MQTTConfig) PublishTimeout() time.Duration {
	return time.Duration(c.Timeouts.Publish) * time.Second
}

// KeepaliveDuration returns the MQTT keepalive interval as a Duration.
func (c *MQTTConfig) KeepaliveDuration() time.Duration {
	return time.Duration(c.Keepalive) * time.Second
}

// DialTimeout returns the WebSocket handshake timeout as a Duration.
func (c *StreamConfig) DialTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeout) * time.Second
}
