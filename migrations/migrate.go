// Package migrations embeds and applies the Indexed Store's schema. It is
// the Schema/Migration component (C7): migrations are forward-only,
// version-gated, and each runs in its own transaction.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedded embed.FS

func init() {
	goose.SetBaseFS(embedded)
	goose.SetTableName("schema_migrations")
}

// Up applies every migration with a version greater than the database's
// current max applied version. Re-running it against an up-to-date
// database is a no-op.
func Up(db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Version reports the database's current applied migration version.
func Version(db *sql.DB) (int64, error) {
	return goose.GetDBVersion(db)
}
