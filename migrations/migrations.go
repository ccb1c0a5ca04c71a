package migrations

import "embed"

// FS встроенные SQL миграции goose
//
//go:embed *.sql
var FS embed.FS
