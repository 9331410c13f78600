// Package db holds the SQL migrations for the PostgreSQL schema.
package db

import "embed"

// Migrations are the golang-migrate files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
