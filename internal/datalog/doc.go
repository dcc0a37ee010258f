// Package datalog maintains the append-only local record of every telemetry
// event the agent produces, independent of broker connectivity.
//
// # Format
//
// CSV, one row per event, created with a fixed header on first run:
//
//	timestamp,device_id,temperature,humidity,status
//
// Temperature carries 2 decimal places and humidity 1, matching the publish
// payload. The status column records the delivery outcome at time of write
// (sent or buffered); rows are never retroactively upgraded.
//
// # Guarantees
//
//   - The header exists before any data row is appended.
//   - Each append is a single atomic write of one complete line, so a reader
//     tailing the file only ever observes whole records.
//   - The file grows monotonically; nothing in the agent mutates or deletes
//     existing rows.
package datalog
