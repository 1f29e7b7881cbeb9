// Package migrations holds the database schema migrations for orbitapi.
// Migrations are written as Go functions and registered with bun's migrator.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry consumed by the db commands and by serve --auto-migrate.
var Migrations = migrate.NewMigrations()
