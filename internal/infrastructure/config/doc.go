// Package config provides configuration loading for the telemetry agent.
//
// Configuration is loaded from a YAML file with three layers of precedence:
//
//  1. Hardcoded defaults
//  2. YAML file values
//  3. GRAYAGENT_* environment variables
//
// # Sections
//
//   - agent: device identity, topic namespace, publish interval
//   - mqtt: broker endpoint, mutual-TLS credential paths, timeouts, reconnect backoff
//   - stream: inbound WebSocket subscription channel
//   - storage: durable CSV log and SQLite buffer store
//   - influxdb: optional local telemetry mirror
//   - logging: level, format, output
//
// Validation collects every problem into a single error so an operator can fix
// a misconfigured deployment in one pass rather than one failure at a time.
//
// Note: config validates that credential paths are set; the mqtt package
// verifies the files themselves are present and readable before connecting.
package config
