package utils

import (
	"database/sql"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// InitializePoolScheduler starts a cron job that logs connection pool
// statistics on the given schedule. The caller stops the returned cron on
// shutdown.
func InitializePoolScheduler(sqlDB *sql.DB, log *zap.Logger, schedule string) (*cron.Cron, error) {
	log = log.Named("pool-scheduler")
	c := cron.New()

	if _, err := c.AddFunc(schedule, func() {
		LogPoolStats(log, sqlDB.Stats())
	}); err != nil {
		return nil, fmt.Errorf("schedule pool stats %q: %w", schedule, err)
	}

	c.Start()
	log.Info("pool stats scheduler started", zap.String("schedule", schedule))
	return c, nil
}

// LogPoolStats writes one pool snapshot. Waits mean requests blocked on an
// exhausted pool, so they are logged at warn.
func LogPoolStats(log *zap.Logger, stats sql.DBStats) {
	fields := []zap.Field{
		zap.Int("max_open", stats.MaxOpenConnections),
		zap.Int("open", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
	}
	if stats.WaitCount > 0 {
		log.Warn("connection pool stats", fields...)
		return
	}
	log.Info("connection pool stats", fields...)
}
