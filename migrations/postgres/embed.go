// Package migrations embeds the Postgres schema migrations applied by goose.
package migrations

import "embed"

// FS holds the goose migration files at its root.
//
//go:embed *.sql
var FS embed.FS
