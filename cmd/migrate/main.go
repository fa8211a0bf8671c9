// Command migrate applies the embedded PostgreSQL migrations and exits.
package main

import (
	"database/sql"
	"os"

	"customerhub-backend/config"
	"customerhub-backend/migrations"

	_ "github.com/lib/pq"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		config.NewLogger(&config.Config{LogLevel: "info", LogFormat: "text"}).
			WithError(err).Fatal("Invalid configuration")
	}
	log := config.NewLogger(cfg)

	if cfg.DBDriver != config.DriverPostgres {
		log.WithField("driver", cfg.DBDriver).Error("Versioned migrations only target PostgreSQL; use AUTO_MIGRATE for SQLite")
		os.Exit(2)
	}

	db, err := sql.Open("postgres", cfg.DBURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.WithError(err).Fatal("Failed to reach database")
	}

	if err := migrations.Up(db, log); err != nil {
		log.WithError(err).Fatal("Migration failed")
	}
}
