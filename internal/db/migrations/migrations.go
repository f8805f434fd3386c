// Package migrations embute os arquivos SQL aplicados pelo goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
