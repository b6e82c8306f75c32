package migrations

import "github.com/uptrace/bun/migrate"

// Migrations collects the schema changes; each numbered file registers one.
var Migrations = migrate.NewMigrations()
