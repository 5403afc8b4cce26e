package sqlite

import (
	"embed"

	// Registers the sqlite:// scheme backed by the modernc driver.
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"

	"spendwise/internal/storage/schema"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the database file at dbPath to the latest schema.
// golang-migrate opens its own connection and closes it when done.
func RunMigrations(dbPath string) error {
	_, err := schema.Apply(migrationsFS, "migrations", "sqlite://"+dbPath)
	return err
}
