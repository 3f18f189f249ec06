// Package migrations embeds the goose SQL migrations that define the
// clients and phones tables.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
