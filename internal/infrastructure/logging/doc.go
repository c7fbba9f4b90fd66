// Package logging provides structured logging for miniiot.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the device runtime.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - A debug switch that overrides the level, used for the runtime's
//     per-event chatter (pin writes, sends, heartbeats)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//	  debug: false
//
// # Security
//
// Never log broker passwords or InfluxDB tokens.
package logging
