package services_test

import (
	"context"
	"testing"

	"customerhub-backend/models"
	"customerhub-backend/services"
	"customerhub-backend/testutil"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepRemovesOnlyOrphans(t *testing.T) {
	db := testutil.NewDBWithoutForeignKeys(t)
	log, hook := testutil.NewLogger()

	owner := models.Customer{Name: "Ada", Age: 36, CustomerHistories: []models.CustomerHistory{{History: "kept"}}}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&models.CustomerHistory{CustomerID: 999, History: "orphan"}).Error)
	require.NoError(t, db.Create(&models.CustomerHistory{CustomerID: 998, History: "orphan too"}).Error)

	sweeper := services.NewHistorySweeper(db, log)
	deleted, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var left []models.CustomerHistory
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "kept", left[0].History)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	deleted, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestSweeperSchedule(t *testing.T) {
	log, _ := testutil.NewLogger()
	sweeper := services.NewHistorySweeper(testutil.NewDB(t), log)

	assert.Error(t, sweeper.Start("not a schedule"))

	require.NoError(t, sweeper.Start("@every 1h"))
	sweeper.Stop()
}

func TestSweepStopsOnCancelledContext(t *testing.T) {
	db := testutil.NewDBWithoutForeignKeys(t)
	log, _ := testutil.NewLogger()
	require.NoError(t, db.Create(&models.CustomerHistory{CustomerID: 999, History: "orphan"}).Error)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deleted, err := services.NewHistorySweeper(db, log).Sweep(ctx)
	assert.Error(t, err)
	assert.Zero(t, deleted)

	var count int64
	require.NoError(t, db.Model(&models.CustomerHistory{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
