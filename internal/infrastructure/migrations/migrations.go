// Package migrations embeds the SQL schema and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

type migrator interface {
	Up() error
	Down() error
	Close() (error, error)
}

var newMigrator = func(databaseURL string) (migrator, error) {
	src, err := Source()
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Source returns the embedded migrations as a golang-migrate source
func Source() (source.Driver, error) {
	return iofs.New(files, "sql")
}

// Up applies every pending migration. An up-to-date schema is not an error.
func Up(databaseURL string) error {
	return run(databaseURL, "up", migrator.Up)
}

// Down reverts every applied migration
func Down(databaseURL string) error {
	return run(databaseURL, "down", migrator.Down)
}

func run(databaseURL, direction string, step func(migrator) error) error {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return fmt.Errorf("error initializing migrations: %w", err)
	}
	defer m.Close()

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error applying migrations %s: %w", direction, err)
	}
	return nil
}
