// Package config loads, normalizes, and validates reidsubmit configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every knob the CLI needs:
// dataset video lists, validation frame bounds, the leaderboard name used
// for archive naming, and external tool locations. Configuration is read
// once per invocation and never mutated mid-run.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical task modes, and clear validation errors.
package config
