// Package migrations embeds the SQL schema migrations applied by dbctl and
// the ingest command.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
