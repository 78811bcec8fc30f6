// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS contains the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS

// Dialect is the goose dialect of the board database.
const Dialect = "sqlite3"

// Setup points goose at the embedded migrations.
func Setup() error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect(Dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return nil
}

// Run applies all pending migrations to the given database.
func Run(db *sql.DB) error {
	if err := Setup(); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Commands lists the operations accepted by Exec, in help order.
var Commands = []struct{ Name, Help string }{
	{"up", "Migrate to the latest version"},
	{"up-one", "Migrate one version up"},
	{"down", "Roll back one version"},
	{"status", "Show migration status"},
	{"version", "Show current version"},
	{"reset", "Roll back all migrations"},
}

// Exec runs a single migration command against db.
func Exec(db *sql.DB, command string) error {
	if err := Setup(); err != nil {
		return err
	}

	var err error
	switch command {
	case "up":
		err = goose.Up(db, ".")
	case "up-one":
		err = goose.UpByOne(db, ".")
	case "down":
		err = goose.Down(db, ".")
	case "status":
		err = goose.Status(db, ".")
	case "version":
		err = goose.Version(db, ".")
	case "reset":
		err = goose.Reset(db, ".")
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	return nil
}
