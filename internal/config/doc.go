// Package config loads, normalizes, and validates the TOML configuration
// shared by the API server, the gRPC server, and the camdram CLI.
//
// Missing files mean defaults. Paths accept a leading "~" and come back
// absolute. Camdram credentials, the database path, and the API bind address
// fall back to CAMDRAM_* environment variables when the file leaves them
// empty.
package config
