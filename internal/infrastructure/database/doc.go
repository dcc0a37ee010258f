// Package database provides SQLite connectivity for the agent's local
// buffer store.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Connection lifecycle and health checks
//
// The schema is owned by the store that uses the connection (see the
// telemetry buffer store); there is no migration engine, the agent has a
// single small table created at open.
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Storage.Buffer.Path})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package database
