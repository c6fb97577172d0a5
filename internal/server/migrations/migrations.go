// Package migrations embeds the directory server's goose migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
