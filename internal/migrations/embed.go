// Package migrations carries the embedded schema migrations applied through
// goose at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
