// Package influxdb provides the agent's optional time-series mirror.
//
// It wraps the official influxdb-client-go v2 library with the agent's
// patterns for connection management, reading writes, and health monitoring.
//
// # Purpose
//
// When enabled, every captured sensor reading is mirrored into a local
// InfluxDB bucket alongside the broker publish. The mirror is a convenience
// for local dashboards; the broker and the durable CSV log remain the
// records of truth and never depend on it.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    Enabled: true,
//	    URL:     "http://localhost:8086",
//	    Token:   "your-token",
//	    Org:     "telemetry",
//	    Bucket:  "readings",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteReading("device-042", reading, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via
// the SetOnError callback. Connection and health check errors are
// returned directly.
package influxdb
