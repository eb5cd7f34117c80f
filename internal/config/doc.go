// Package config loads, normalizes, and validates rolodex configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and sweep daemon need: database location, the default phone region
// for normalization, resolution-cache bounds, dedupe scoring weights and
// threshold, sweep cadence, and log output settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors. Dedupe thresholds and the
// default region are deliberately configuration, not constants.
package config
