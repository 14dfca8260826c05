// Package migrations содержит SQL-схему сервиса.
package migrations

import "embed"

// FS содержит встроенные файлы миграций.
//
//go:embed *.sql
var FS embed.FS
