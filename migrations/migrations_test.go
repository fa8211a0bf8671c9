package migrations

import (
	"database/sql"
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	source, err := iofs.New(FS, sourceDir)
	require.NoError(t, err)
	defer source.Close()

	version, err := source.First()
	require.NoError(t, err)
	versions := []uint{version}
	for {
		version, err = source.Next(version)
		if err != nil {
			assert.ErrorIs(t, err, fs.ErrNotExist)
			break
		}
		versions = append(versions, version)
	}
	assert.Equal(t, []uint{1, 2, 3}, versions)

	r, identifier, err := source.ReadUp(1)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "create_customers", identifier)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS customers")
}

func TestHistoriesCascadeWithCustomer(t *testing.T) {
	body, err := fs.ReadFile(FS, "sql/0002_create_customer_histories.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "ON DELETE CASCADE")
}

func TestUpAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	log, _ := test.NewNullLogger()
	require.NoError(t, Up(db, log))
	// A second run finds nothing to apply.
	require.NoError(t, Up(db, log))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM customers`).Scan(&n))
}
