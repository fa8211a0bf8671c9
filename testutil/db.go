// Package testutil provides SQLite-backed databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"customerhub-backend/config"
	"customerhub-backend/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database in a temp dir with foreign keys on.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, config.SQLiteDSN(filepath.Join(t.TempDir(), "test.db")))
}

// NewDBWithoutForeignKeys is used to simulate stores that do not enforce
// the customer_id reference.
func NewDBWithoutForeignKeys(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "test.db")+"?_foreign_keys=off")
}

func open(t testing.TB, dsn string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// NewLogger returns a logger whose entries are captured by the returned hook.
func NewLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}
