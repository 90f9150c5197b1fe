package postgres

import "embed"

// Migrations esquema SQL en formato goose, embebido en el binario de cmd/migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS
