// Package migrations applies the versioned PostgreSQL schema embedded in
// this binary.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var FS embed.FS

const sourceDir = "sql"

// Up applies every pending migration. An up-to-date schema is not an error.
func Up(db *sql.DB, log logrus.FieldLogger) error {
	m, err := newMigrator(db, log)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("Schema is up to date")
	return nil
}

func newMigrator(db *sql.DB, log logrus.FieldLogger) (*migrate.Migrate, error) {
	source, err := iofs.New(FS, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("open migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	m.Log = logAdapter{log: log}
	return m, nil
}

// logAdapter routes migrate's progress output through logrus.
type logAdapter struct {
	log logrus.FieldLogger
}

func (l logAdapter) Printf(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}

func (l logAdapter) Verbose() bool {
	return false
}
