// Telemetry Agent - Device-side sensor publisher
//
// This is the main entry point for the telemetry agent. The agent is
// designed for unattended operation on constrained devices:
//   - At-least-once event delivery over mutual-TLS MQTT
//   - Local buffering and replay across broker outages
//   - A durable append-only CSV record of every captured event
//   - An independent WebSocket subscription for inbound stream messages
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nerrad567/gray-telemetry-agent/internal/backoff"
	"github.com/nerrad567/gray-telemetry-agent/internal/datalog"
	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/config"
	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/database"
	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/logging"
	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-telemetry-agent/internal/sensor"
	"github.com/nerrad567/gray-telemetry-agent/internal/stream"
	"github.com/nerrad567/gray-telemetry-agent/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting telemetry agent",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the durable CSV log
	dlog, err := datalog.Open(cfg.Storage.CSVPath)
	if err != nil {
		return fmt.Errorf("opening durable log: %w", err)
	}
	defer func() {
		log.Info("closing durable log")
		if closeErr := dlog.Close(); closeErr != nil {
			log.Error("error closing durable log", "error", closeErr)
		}
	}()
	log.Info("durable log open", "path", dlog.Path())

	// Open the buffer database
	db, err := database.Open(database.Config{
		Path:        cfg.Storage.Buffer.Path,
		WALMode:     cfg.Storage.Buffer.WALMode,
		BusyTimeout: cfg.Storage.Buffer.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening buffer database: %w", err)
	}
	defer func() {
		log.Info("closing buffer database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing buffer database", "error", closeErr)
		}
	}()
	log.Info("buffer database connected", "path", db.Path())

	buffer, err := telemetry.NewSQLiteBuffer(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("initialising event buffer: %w", err)
	}

	// Create the MQTT session. Missing or unreadable credentials are fatal:
	// the agent cannot authenticate without them, so retrying is pointless.
	session, err := mqtt.New(cfg.MQTT, cfg.Agent)
	if err != nil {
		return fmt.Errorf("creating MQTT session: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := session.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	dataTopic := mqtt.Topics{}.DeviceData(cfg.Agent.TopicNamespace, cfg.Agent.DeviceID)
	queue := telemetry.NewQueue(session, buffer, dlog, log, dataTopic, byte(cfg.MQTT.QoS))

	// Replay buffered events whenever a session comes up.
	session.SetOnConnect(func() {
		log.Info("MQTT session established", "endpoint", cfg.MQTT.Endpoint)
		go func() {
			if drainErr := queue.Drain(ctx); drainErr != nil {
				log.Warn("buffer replay interrupted", "error", drainErr)
			}
		}()
	})
	session.SetOnDisconnect(func(err error) {
		log.Warn("MQTT session lost, events will buffer locally", "error", err)
	})

	// The initial connection retries in the background: startup never
	// blocks on broker availability, events buffer until a session is up.
	go maintainSession(ctx, session, cfg.MQTT, log)

	// Connect to InfluxDB mirror (optional)
	var mirror telemetry.Mirror
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			// The mirror is a convenience store; the agent runs without it.
			log.Warn("InfluxDB mirror unavailable, continuing without it", "error", influxErr)
		} else {
			defer func() {
				log.Info("closing InfluxDB connection")
				if closeErr := influxClient.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			influxClient.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			mirror = influxClient
			log.Info("InfluxDB mirror connected",
				"url", cfg.InfluxDB.URL,
				"bucket", cfg.InfluxDB.Bucket,
			)
		}
	} else {
		log.Info("InfluxDB mirror disabled")
	}

	var wg sync.WaitGroup

	// Publishing loop
	publisher := telemetry.NewPublisher(
		sensor.NewSimulated(),
		queue,
		mirror,
		log,
		cfg.Agent.DeviceID,
		cfg.Agent.Interval(),
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if runErr := publisher.Run(ctx); runErr != nil {
			log.Error("publishing loop failed", "error", runErr)
		}
	}()

	// Inbound stream subscription (if enabled)
	if cfg.Stream.Enabled {
		subscriber := stream.NewSubscriber(cfg.Stream, cfg.Agent.DeviceID, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if runErr := subscriber.Run(ctx, func(message []byte) {
				log.Info("stream message received", "payload", string(message))
			}); runErr != nil {
				log.Error("stream subscriber failed", "error", runErr)
			}
		}()
	} else {
		log.Info("stream subscription disabled")
	}

	log.Info("initialisation complete, agent running",
		"device_id", cfg.Agent.DeviceID,
		"data_topic", dataTopic,
		"interval", cfg.Agent.Interval(),
	)

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Let the loops finish their current cycle before tearing down
	// connections via the deferred Close() chain.
	wg.Wait()

	log.Info("telemetry agent stopped",
		"delivered", queue.Delivered(),
		"buffered", queue.Buffered(),
	)
	return nil
}

// maintainSession drives initial broker connection attempts with exponential
// backoff. Once a session is established the paho client's auto-reconnect
// takes over; this loop only runs until the first success or shutdown.
func maintainSession(ctx context.Context, session *mqtt.Client, cfg config.MQTTConfig, log *logging.Logger) {
	retry := backoff.New(backoff.Policy{
		Initial: time.Duration(cfg.Reconnect.InitialDelay) * time.Second,
		Max:     time.Duration(cfg.Reconnect.MaxDelay) * time.Second,
	})

	for {
		err := session.Connect()
		if err == nil {
			return
		}

		delay := retry.Next()
		switch {
		case errors.Is(err, mqtt.ErrBrokerRejected):
			log.Error("broker rejected connection", "error", err, "retry_in", delay)
		case errors.Is(err, mqtt.ErrHandshake):
			log.Error("TLS handshake failed", "error", err, "retry_in", delay)
		case errors.Is(err, mqtt.ErrConnectTimeout):
			log.Warn("broker unreachable", "error", err, "retry_in", delay)
		default:
			log.Warn("connection attempt failed", "error", err, "retry_in", delay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses GRAYAGENT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYAGENT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
