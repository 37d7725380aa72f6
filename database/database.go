package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"handyman/catalog"
	"handyman/config"
	"handyman/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectDb opens the configured database, sizes its connection pool and
// runs migrations.
func ConnectDb(cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log, cfg.SlowQueryThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Driver, err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := runMigrations(db, log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database connected",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns))
	return db, nil
}

func openDialector(cfg config.DBConfig) (gorm.Dialector, error) {
	dsn := cfg.ConnectionString()
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// runMigrations performs database migrations
func runMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("running migrations")

	// the view pins the tables it reads; drop it while they are altered
	if err := db.Exec("DROP VIEW IF EXISTS service_review_stats").Error; err != nil {
		return fmt.Errorf("migration failed: drop stats view: %w", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Service{},
		&models.Project{},
		&models.Review{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := createStatsView(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("migrations completed")
	return nil
}

const statsViewQuery = `
SELECT
	s.id AS service_id,
	s.name AS service_name,
	s.icon AS service_icon,
	COUNT(r.id) AS total_reviews,
	COALESCE(SUM(r.rating), 0) AS rating_sum,
	SUM(CASE WHEN r.rating = 1 THEN 1 ELSE 0 END) AS rating_1_count,
	SUM(CASE WHEN r.rating = 2 THEN 1 ELSE 0 END) AS rating_2_count,
	SUM(CASE WHEN r.rating = 3 THEN 1 ELSE 0 END) AS rating_3_count,
	SUM(CASE WHEN r.rating = 4 THEN 1 ELSE 0 END) AS rating_4_count,
	SUM(CASE WHEN r.rating = 5 THEN 1 ELSE 0 END) AS rating_5_count
FROM services s
LEFT JOIN reviews r ON r.service_id = s.id
GROUP BY s.id, s.name, s.icon`

// createStatsView creates service_review_stats. The view only counts;
// averages and percentages are derived in Go.
func createStatsView(db *gorm.DB) error {
	if err := db.Exec("CREATE VIEW service_review_stats AS " + statsViewQuery).Error; err != nil {
		return fmt.Errorf("create stats view: %w", err)
	}
	return nil
}

// SeedServices inserts catalog services missing from the services table.
// Existing rows keep their ids; their icon is refreshed from the catalog.
// It returns the number of services created.
func SeedServices(ctx context.Context, db *gorm.DB, cat *catalog.Catalog) (int, error) {
	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range cat.Services() {
			var row models.Service
			err := tx.Where("name = ?", s.Name).Take(&row).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&models.Service{Name: s.Name, Icon: s.Icon}).Error; err != nil {
					return fmt.Errorf("seed service %q: %w", s.Name, err)
				}
				created++
			case err != nil:
				return fmt.Errorf("seed service %q: %w", s.Name, err)
			case row.Icon != s.Icon:
				if err := tx.Model(&row).Update("icon", s.Icon).Error; err != nil {
					return fmt.Errorf("seed service %q: %w", s.Name, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// Ping checks that a pooled connection can reach the database.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
