// Package migrations holds the goose SQL migrations compiled into the
// entrypoint binary, so the embedded runner needs no migrations directory
// on disk.
package migrations

import "embed"

// Files contains all SQL migration files.
//
//go:embed *.sql
var Files embed.FS
