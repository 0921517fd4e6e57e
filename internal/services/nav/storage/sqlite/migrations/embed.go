// Package migrations embeds the SQL migration files for the nav store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
