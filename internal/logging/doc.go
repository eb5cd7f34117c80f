// Package logging wires log/slog for the rolodex CLI and sweep daemon.
//
// It provides logger construction from config (console or JSON format, level
// parsing, multi-destination output), typed attribute helpers, standardized
// field keys for contact-resolution events, component-scoped loggers, and a
// no-op logger for tests and optional dependencies.
package logging
