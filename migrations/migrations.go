// Package migrations embeds the SQL schema migrations applied by cmd/migrate
// and the repository test helper.
package migrations

import "embed"

// FS holds every *.sql migration in golang-migrate's file naming scheme.
//
//go:embed *.sql
var FS embed.FS
