package migrations

import "embed"

// FS contains the embedded schema migrations of the root config store.
//
//go:embed *.sql
var FS embed.FS
