package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type HealthController struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewHealthController(db *gorm.DB, log logrus.FieldLogger) *HealthController {
	return &HealthController{db: db, log: log}
}

// Health reports whether the database answers a ping
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := hc.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		hc.log.WithError(err).Warn("Database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
