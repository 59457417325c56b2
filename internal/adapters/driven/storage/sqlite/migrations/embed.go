// Package migrations holds the versioned catalogue schema applied by golang-migrate.
package migrations

import "embed"

// FS holds the NNN_name.up.sql / NNN_name.down.sql pairs.
//
//go:embed *.sql
var FS embed.FS
