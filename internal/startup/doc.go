// Package startup sequences the two phases of entrypoint execution:
// schema migration, then service launch. Migration failure is terminal —
// the service command is never started against an unmigrated schema, and
// the process exits non-zero. On success the configured launcher hands the
// process over to the service.
package startup
