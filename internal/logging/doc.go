// Package logging provides structured logging for wsecho.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the peer. It provides both general logging
// functions and specialized functions for session-oriented logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (payload dumps, command dispatch)
//   - Info: Normal operations (connections, sessions, shutdown)
//   - Warn: Non-fatal issues (rejected handshakes, discovery misses)
//   - Error: Session and startup failures
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Session started",
//	    zap.Int64("session", 7),
//	    zap.String("remote_addr", "192.168.1.100:51342"),
//	)
//
// # Specialized Logging
//
// Connection Logging:
//
//	logging.LogConnection(remoteAddr, "accepted")
//	logging.LogConnection(remoteAddr, "websocket_upgraded")
//	logging.LogConnection(remoteAddr, "closed")
//
// Session failure reports carry the failing operation name and session id:
//
//	logging.LogSessionFailure(id, "read", err)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given, the WSECHO_LOG_LEVEL environment variable is
// consulted; if that is also unset, logging is silent. Silent-by-default
// keeps the console subcommand's terminal output clean.
//
// # Output Format
//
// Logs are written to stdout in console format (human-readable):
//
//	2025-11-25T10:30:45.123-0800  INFO  Connection event
//	  remote_addr=192.168.1.100:51342
//	  event=accepted
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
