// Package migrations embeds the ordered SQL schema scripts.
package migrations

import "embed"

// FS holds every *.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
