// Package log provides structured event capture for device registration.
//
// This package defines the Logger interface and Event types for recording
// what the registration state machine and its transport did: state changes,
// requests and responses, operation-status notifications and errors. It is
// separate from operational logging (slog); the capture is a complete,
// machine-readable trace for debugging a provisioning run after the fact.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/provisioning/device.plog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at two layers:
//   - Transport: requests handed to the transport and their completions (MessageEvent)
//   - Registration: state changes (StateChangeEvent) and status notifications (StatusEvent)
//
// Errors at either layer have a dedicated event type.
//
// # File Format
//
// Log files use CBOR encoding with the .plog extension. The prov-log CLI tool
// provides viewing, filtering, statistics and export.
package log
