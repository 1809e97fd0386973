// Package postgres embebe las migraciones SQL del backend PostgreSQL.
package postgres

import "embed"

//go:embed *.sql
var FS embed.FS
