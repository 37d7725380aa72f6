package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"handyman/catalog"
	"handyman/config"
	"handyman/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func sqliteConfig(t *testing.T) config.DBConfig {
	t.Helper()
	return config.DBConfig{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "handyman.db") + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate",
		MaxOpenConns: 2,
		MaxIdleConns: 2,
	}
}

func TestConnectDbMigrates(t *testing.T) {
	db, err := ConnectDb(sqliteConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	for _, table := range []string{"customers", "services", "projects", "reviews"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	var rows []models.ServiceReviewStatsRow
	require.NoError(t, db.Find(&rows).Error, "stats view is queryable")
	assert.Empty(t, rows)
	require.NoError(t, Ping(context.Background(), db))
}

func TestConnectDbRejectsUnknownDriver(t *testing.T) {
	_, err := ConnectDb(config.DBConfig{Driver: "oracle"}, zap.NewNop())
	assert.EqualError(t, err, `unsupported database driver "oracle"`)
}

func TestSeedServicesIsIdempotent(t *testing.T) {
	cfg := sqliteConfig(t)
	db, err := ConnectDb(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	cat, err := catalog.Default()
	require.NoError(t, err)
	ctx := context.Background()

	created, err := SeedServices(ctx, db, cat)
	require.NoError(t, err)
	assert.Equal(t, 6, created)

	require.NoError(t, db.Model(&models.Service{}).Where("name = ?", "Custom Shelving").Update("icon", "old").Error)

	created, err = SeedServices(ctx, db, cat)
	require.NoError(t, err)
	assert.Zero(t, created)

	var shelving models.Service
	require.NoError(t, db.Where("name = ?", "Custom Shelving").Take(&shelving).Error)
	assert.Equal(t, "layer-group", shelving.Icon)
	assert.Equal(t, uint(5), shelving.ID, "ids follow catalog order and survive reseeding")

	var rows []models.ServiceReviewStatsRow
	require.NoError(t, db.Order("service_id").Find(&rows).Error)
	require.Len(t, rows, 6)
	assert.Equal(t, "Interior Painting", rows[0].ServiceName)
	assert.Zero(t, rows[0].TotalReviews)
	assert.Zero(t, rows[0].Rating5Count)
}

func TestGormLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), 50*time.Millisecond).LogMode(gormlogger.Info)
	ctx := context.Background()
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), fc, nil)
	l.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	l.Trace(ctx, time.Now(), fc, errors.New("syntax error"))
	l.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "query executed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "slow query", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "query failed", entries[2].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[3].Level, "a missing row is not an error")

	logs.TakeAll()
	NewGormLogger(zap.New(core), 0).LogMode(gormlogger.Silent).Trace(ctx, time.Now(), fc, errors.New("boom"))
	assert.Zero(t, logs.Len())
}
