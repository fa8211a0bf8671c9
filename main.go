package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"customerhub-backend/config"
	"customerhub-backend/migrations"
	"customerhub-backend/models"
	"customerhub-backend/routes"
	"customerhub-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	dotenv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := config.NewLogger(cfg)
	if !dotenv {
		log.Debug("No .env file found")
	}
	gin.SetMode(cfg.GinMode)

	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	log.WithField("driver", cfg.DBDriver).Info("Database connected")

	if err := migrate(cfg, db, log); err != nil {
		log.WithError(err).Fatal("Failed to prepare schema")
	}

	mode, err := services.ParsePruneMode(cfg.HistoryPruneMode)
	if err != nil {
		log.WithError(err).Fatal("Invalid history prune mode")
	}

	sweeper := services.NewHistorySweeper(db, log)
	if cfg.HistorySweepSchedule != "" {
		if err := sweeper.Start(cfg.HistorySweepSchedule); err != nil {
			log.WithError(err).Fatal("Failed to schedule orphan sweep")
		}
	}
	defer sweeper.Stop()

	stop := make(chan struct{})
	defer close(stop)

	var limiter *config.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = config.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
		limiter.StartCleanup(10*time.Minute, stop)
	}

	r := routes.SetupRouter(routes.Dependencies{
		Config:      cfg,
		Log:         log,
		DB:          db,
		Customers:   services.NewCustomerService(db, log, mode),
		Todos:       services.NewTodoService(db, log),
		RateLimiter: limiter,
	})
	printRoutes(r, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.WithField("port", cfg.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server stopped unexpectedly")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

// migrate applies the versioned scripts and/or AutoMigrate as configured.
func migrate(cfg *config.Config, db *gorm.DB, log *logrus.Logger) error {
	if cfg.RunMigrations {
		if cfg.DBDriver != config.DriverPostgres {
			return fmt.Errorf("RUN_MIGRATIONS requires the postgres driver, got %q", cfg.DBDriver)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("database handle: %w", err)
		}
		if err := migrations.Up(sqlDB, log); err != nil {
			return err
		}
	}
	if cfg.AutoMigrate {
		if err := models.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("Auto migration complete")
	}
	return nil
}

func printRoutes(r *gin.Engine, log *logrus.Logger) {
	for _, route := range r.Routes() {
		log.Debugf("%-6s %s", route.Method, route.Path)
	}
}
