// Package migrations embeds the SQL schema files so the binary can migrate
// without the source tree next to it.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
