// Package log provides structured protocol event capture for the mesh GATT bearer.
//
// This package defines the Logger interface and Event types for recording what
// happens on a bearer session at two layers: the link layer (individual
// characteristic writes and notifications) and the bearer layer (whole PDUs,
// MTU negotiation, profile and readiness changes). It is separate from
// operational logging (slog) - protocol capture gives a complete
// machine-readable trace of a session for debugging and analysis.
//
// # Basic Usage
//
// Sessions accept a Logger through their configuration:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For field captures: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/meshgatt/node.blog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Each event carries exactly one payload:
//   - Segment: one link-layer write or notification
//   - PDU: a complete PDU handed to or from the mesh stack
//   - Negotiation: requested and granted transport unit
//   - StateChange: connection, profile and readiness transitions
//   - Error: failures at either layer
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer map keys and
// use the .blog extension. The bearer-log command views, filters and
// summarizes them.
package log
