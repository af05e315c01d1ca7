// Package config loads, normalizes, and validates ascsh configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ASCD_SOCKET. The Config type centralizes every knob the shell needs, so the
// daemon socket, history log, and logging setup are discovered in one pass.
//
// Always obtain settings through this package so the command layer receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
