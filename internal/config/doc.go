// Package config loads, normalizes, and validates rejoin configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves the state directory beside the
// running executable when none is configured. The Config type centralizes
// every knob the scanner, matcher, state store, and merger need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
