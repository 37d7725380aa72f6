// Package store is the review store: filtered review lists, per-service
// statistics, service resolution and the review submission transaction.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"handyman/models"
	"handyman/ratings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReviewStore reads and writes reviews through a pooled *gorm.DB.
type ReviewStore struct {
	db    *gorm.DB
	log   *zap.Logger
	clock func() time.Time
}

// Option configures a ReviewStore built by New.
type Option func(*ReviewStore)

// WithClock replaces time.Now as the source of submission timestamps.
func WithClock(clock func() time.Time) Option {
	return func(rs *ReviewStore) { rs.clock = clock }
}

// New returns a store over db that logs under "store".
func New(db *gorm.DB, log *zap.Logger, opts ...Option) *ReviewStore {
	rs := &ReviewStore{
		db:    db,
		log:   log.Named("store"),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// ReviewFilter narrows ListReviews. A nil ServiceID means every service.
type ReviewFilter struct {
	FeaturedOnly bool
	ServiceID    *uint
}

// ListReviews returns reviews joined with their customer, service and
// project, most recent first.
func (rs *ReviewStore) ListReviews(ctx context.Context, f ReviewFilter) ([]models.ReviewListing, error) {
	start := time.Now()

	q := rs.db.WithContext(ctx).
		Table("reviews AS r").
		Select(`r.id AS review_id, r.rating, r.comment, r.review_date, r.is_verified, r.is_featured,
			c.name AS customer_name, c.avatar_url, c.is_verified AS customer_verified,
			s.name AS service_name, s.icon AS service_icon, p.title AS project_title`).
		Joins("JOIN customers c ON c.id = r.customer_id").
		Joins("JOIN services s ON s.id = r.service_id").
		Joins("JOIN projects p ON p.id = r.project_id")
	if f.FeaturedOnly {
		q = q.Where("r.is_featured = ?", true)
	}
	if f.ServiceID != nil {
		q = q.Where("r.service_id = ?", *f.ServiceID)
	}

	reviews := []models.ReviewListing{}
	if err := q.Order("r.review_date DESC").Order("r.id DESC").Scan(&reviews).Error; err != nil {
		return nil, rs.fail("list reviews", start, err)
	}
	return reviews, nil
}

// ListReviewsByService resolves a service label and lists its reviews. A
// label that matches no service yields an empty list.
func (rs *ReviewStore) ListReviewsByService(ctx context.Context, featuredOnly bool, label string) ([]models.ReviewListing, error) {
	if strings.TrimSpace(label) == "" {
		return rs.ListReviews(ctx, ReviewFilter{FeaturedOnly: featuredOnly})
	}
	id, err := rs.ResolveServiceID(ctx, label)
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return []models.ReviewListing{}, nil
	}
	if err != nil {
		return nil, err
	}
	return rs.ListReviews(ctx, ReviewFilter{FeaturedOnly: featuredOnly, ServiceID: &id})
}

// ReviewStats returns every service's statistics, most reviewed first.
func (rs *ReviewStore) ReviewStats(ctx context.Context) ([]models.ServiceStats, error) {
	start := time.Now()

	var rows []models.ServiceReviewStatsRow
	if err := rs.db.WithContext(ctx).
		Order("total_reviews DESC").
		Order("service_id ASC").
		Find(&rows).Error; err != nil {
		return nil, rs.fail("review stats", start, err)
	}

	out := make([]models.ServiceStats, len(rows))
	for i, row := range rows {
		out[i] = toServiceStats(row)
	}
	return out, nil
}

// ServiceStats returns the statistics of the service a label resolves to.
func (rs *ReviewStore) ServiceStats(ctx context.Context, label string) (models.ServiceStats, error) {
	start := time.Now()
	db := rs.db.WithContext(ctx)

	svc, err := resolveService(db, label)
	if err != nil {
		return models.ServiceStats{}, rs.fail("service stats", start, err)
	}
	var row models.ServiceReviewStatsRow
	if err := db.Where("service_id = ?", svc.ID).Take(&row).Error; err != nil {
		return models.ServiceStats{}, rs.fail("service stats", start, err)
	}
	return toServiceStats(row), nil
}

func toServiceStats(row models.ServiceReviewStatsRow) models.ServiceStats {
	summary := ratings.FromCounts([ratings.MaxStars]int{
		row.Rating1Count, row.Rating2Count, row.Rating3Count, row.Rating4Count, row.Rating5Count,
	})
	pct := summary.Percentages()
	return models.ServiceStats{
		ServiceID:      row.ServiceID,
		ServiceName:    row.ServiceName,
		ServiceIcon:    row.ServiceIcon,
		TotalReviews:   row.TotalReviews,
		AverageRating:  summary.Average(),
		Rating1Percent: pct[0],
		Rating2Percent: pct[1],
		Rating3Percent: pct[2],
		Rating4Percent: pct[3],
		Rating5Percent: pct[4],
	}
}

// ListServices returns the service catalog ordered by name.
func (rs *ReviewStore) ListServices(ctx context.Context) ([]models.Service, error) {
	start := time.Now()

	services := []models.Service{}
	if err := rs.db.WithContext(ctx).Order("name").Find(&services).Error; err != nil {
		return nil, rs.fail("list services", start, err)
	}
	return services, nil
}

// ResolveServiceID maps a user supplied label to a service id. A
// case-insensitive exact match wins; otherwise the lowest id whose name
// contains the label does. Wildcard characters match literally.
func (rs *ReviewStore) ResolveServiceID(ctx context.Context, label string) (uint, error) {
	start := time.Now()

	svc, err := resolveService(rs.db.WithContext(ctx), label)
	if err != nil {
		return 0, rs.fail("resolve service", start, err)
	}
	return svc.ID, nil
}

// resolveService folds case in Go, Unicode-aware and identical on every
// driver. The services table is a small catalog.
func resolveService(db *gorm.DB, label string) (models.Service, error) {
	key := strings.TrimSpace(label)
	if key == "" {
		return models.Service{}, &NotFoundError{Resource: "service", Key: key}
	}

	var services []models.Service
	if err := db.Order("id").Find(&services).Error; err != nil {
		return models.Service{}, &StorageError{Op: "resolve service", Err: err}
	}

	for _, svc := range services {
		if strings.EqualFold(svc.Name, key) {
			return svc, nil
		}
	}
	needle := strings.ToLower(key)
	for _, svc := range services {
		if strings.Contains(strings.ToLower(svc.Name), needle) {
			return svc, nil
		}
	}
	return models.Service{}, &NotFoundError{Resource: "service", Key: key}
}

// fail logs a failed operation with its duration and makes sure storage
// failures reach the caller as *StorageError.
func (rs *ReviewStore) fail(op string, start time.Time, err error) error {
	elapsed := time.Since(start)

	var nf *NotFoundError
	var ve *ValidationError
	if errors.As(err, &nf) || errors.As(err, &ve) {
		rs.log.Info("store operation rejected",
			zap.String("op", op), zap.Duration("elapsed", elapsed), zap.Error(err))
		return err
	}

	var se *StorageError
	if !errors.As(err, &se) {
		err = &StorageError{Op: op, Err: err}
	}
	rs.log.Error("store operation failed",
		zap.String("op", op), zap.Duration("elapsed", elapsed), zap.Error(err))
	return err
}
