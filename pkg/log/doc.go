// Package log provides the protocol trace for BLE feature sessions.
//
// The trace is separate from operational logging (slog): it records every
// frame written or reassembled, every decoded update, every command packed
// and every response parsed, in a compact machine-readable form that the
// bluest-log tool can view, filter and export.
//
// # Basic Usage
//
//	// Development: print events through slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Capture to a file
//	fl, _ := log.NewFileLogger("/var/log/bluest/board.blog")
//	cfg.ProtocolLogger = fl
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
// Events carry exactly one payload:
//   - Transport layer: raw frames (FrameEvent)
//   - Feature layer: decoded updates (UpdateEvent), commands (CommandEvent)
//     and responses (ResponseEvent)
//   - Session layer: discovery and configuration changes (StateChangeEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Log files are a concatenation of CBOR-encoded events with integer keys,
// conventionally with the .blog extension.
package log
