package services

import (
	"context"
	"fmt"

	"customerhub-backend/metrics"
	"customerhub-backend/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HistorySweeper removes customer histories whose customer is gone. The
// foreign key cascade normally prevents these rows; the sweep covers stores
// running without foreign key enforcement.
type HistorySweeper struct {
	db   *gorm.DB
	log  logrus.FieldLogger
	cron *cron.Cron
}

func NewHistorySweeper(db *gorm.DB, log logrus.FieldLogger) *HistorySweeper {
	return &HistorySweeper{
		db:  db,
		log: log.WithField("service", "history_sweeper"),
	}
}

// Sweep deletes orphaned histories and returns how many were removed.
func (s *HistorySweeper) Sweep(ctx context.Context) (int64, error) {
	db := s.db.WithContext(ctx)
	customers := db.Model(&models.Customer{}).Select("id")
	result := db.
		Where("customer_id NOT IN (?)", customers).
		Delete(&models.CustomerHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("sweep orphan histories: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.OrphansSwept.Add(float64(result.RowsAffected))
		s.log.WithField("deleted", result.RowsAffected).Warn("Removed orphaned customer histories")
	}
	return result.RowsAffected, nil
}

// Start runs Sweep on the cron schedule until Stop is called.
func (s *HistorySweeper) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.log.WithError(err).Error("Orphan history sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule orphan sweep %q: %w", schedule, err)
	}

	c.Start()
	s.cron = c
	s.log.WithField("schedule", schedule).Info("Orphan history sweep scheduled")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *HistorySweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
