// Package config handles configuration loading, parsing, and validation
// from environment variables and optional config files. It provides
// type-safe access to the settings the entrypoint needs (database
// coordinates, migration behavior, launch behavior) while keeping
// configuration details separate from the orchestration logic.
package config
