package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"handyman/config"
	"handyman/database"
	"handyman/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var submittedAt = time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "reviews.db") + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	db, err := database.ConnectDb(config.DBConfig{
		Driver:       config.DriverSQLite,
		DSN:          dsn,
		MaxOpenConns: 4,
		MaxIdleConns: 4,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newTestStore(t *testing.T, services ...string) (*ReviewStore, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	for _, name := range services {
		require.NoError(t, db.Create(&models.Service{Name: name, Icon: "tools"}).Error)
	}
	return New(db, zap.NewNop(), WithClock(func() time.Time { return submittedAt })), db
}

type rowCounts struct{ customers, projects, reviews int64 }

func countRows(t *testing.T, db *gorm.DB) rowCounts {
	t.Helper()
	var c rowCounts
	require.NoError(t, db.Model(&models.Customer{}).Count(&c.customers).Error)
	require.NoError(t, db.Model(&models.Project{}).Count(&c.projects).Error)
	require.NoError(t, db.Model(&models.Review{}).Count(&c.reviews).Error)
	return c
}

func submit(t *testing.T, rs *ReviewStore, name, email, service string, rating int) *models.ReviewConfirmation {
	t.Helper()
	conf, err := rs.CreateReview(context.Background(), models.ReviewSubmission{
		Name: name, Email: email, Service: service, Rating: rating, Comment: "Great work",
	})
	require.NoError(t, err)
	return conf
}

func TestListReviewsOrderAndFilters(t *testing.T) {
	rs, db := newTestStore(t, "Interior Painting", "Furniture Assembly")
	ctx := context.Background()

	clock := submittedAt
	rs.clock = func() time.Time { clock = clock.Add(time.Hour); return clock }

	first := submit(t, rs, "Ana", "ana@example.com", "Painting", 5)
	second := submit(t, rs, "Ben", "ben@example.com", "Assembly", 3)
	third := submit(t, rs, "Cleo", "cleo@example.com", "Painting", 4)

	all, err := rs.ListReviews(ctx, ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{third.ReviewID, second.ReviewID, first.ReviewID},
		[]uint{all[0].ReviewID, all[1].ReviewID, all[2].ReviewID})
	assert.Equal(t, "Cleo", all[0].CustomerName)
	assert.Equal(t, "Interior Painting", all[0].ServiceName)
	assert.Equal(t, "tools", all[0].ServiceIcon)
	assert.Equal(t, "Painting Project", all[0].ProjectTitle)
	assert.False(t, all[0].IsVerified)
	assert.Nil(t, all[0].AvatarURL)

	paintingID, err := rs.ResolveServiceID(ctx, "painting")
	require.NoError(t, err)
	painting, err := rs.ListReviews(ctx, ReviewFilter{ServiceID: &paintingID})
	require.NoError(t, err)
	assert.Len(t, painting, 2)

	require.NoError(t, db.Model(&models.Review{}).Where("id = ?", second.ReviewID).Update("is_featured", true).Error)
	featured, err := rs.ListReviews(ctx, ReviewFilter{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, second.ReviewID, featured[0].ReviewID)
	assert.True(t, featured[0].IsFeatured)
}

func TestListReviewsByService(t *testing.T) {
	rs, _ := newTestStore(t, "Interior Painting", "Furniture Assembly")
	ctx := context.Background()
	submit(t, rs, "Ana", "ana@example.com", "Painting", 5)
	submit(t, rs, "Ben", "ben@example.com", "Assembly", 2)

	got, err := rs.ListReviewsByService(ctx, false, "assembly")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ben", got[0].CustomerName)

	got, err = rs.ListReviewsByService(ctx, false, "Plumbing")
	require.NoError(t, err)
	assert.Empty(t, got, "an unknown service filters everything out")
	assert.NotNil(t, got)

	got, err = rs.ListReviewsByService(ctx, false, "  ")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestResolveServiceExactMatchFirst(t *testing.T) {
	rs, _ := newTestStore(t, "Interior Painting", "Exterior Painting", "Painting")
	ctx := context.Background()

	exact, err := rs.ResolveServiceID(ctx, " PAINTING ")
	require.NoError(t, err)
	substring, err := rs.ResolveServiceID(ctx, "paint")
	require.NoError(t, err)
	exterior, err := rs.ResolveServiceID(ctx, "exterior")
	require.NoError(t, err)

	assert.Equal(t, uint(3), exact)
	assert.Equal(t, uint(1), substring, "lowest id wins among substring matches")
	assert.Equal(t, uint(2), exterior)
}

func TestResolveServiceEscapesWildcards(t *testing.T) {
	rs, _ := newTestStore(t, "Interior Painting", "Custom_Shelving")
	ctx := context.Background()

	// unescaped, "r_o" would match "Interior" and "%" would match anything
	for _, label := range []string{"%", "r_o", "Interior%Painting", "!"} {
		_, err := rs.ResolveServiceID(ctx, label)
		var nf *NotFoundError
		assert.ErrorAs(t, err, &nf, "label %q", label)
	}

	id, err := rs.ResolveServiceID(ctx, "m_s")
	require.NoError(t, err)
	assert.Equal(t, uint(2), id)
}

func TestResolveServiceFoldsNonASCII(t *testing.T) {
	rs, _ := newTestStore(t, "Électricité Générale", "Pintura de Interiores")
	ctx := context.Background()

	for _, label := range []string{"Électricité Générale", "électricité générale", "ÉLECTRICITÉ GÉNÉRALE", "GÉNÉRALE"} {
		id, err := rs.ResolveServiceID(ctx, label)
		require.NoError(t, err, "label %q", label)
		assert.Equal(t, uint(1), id, "label %q", label)
	}

	conf := submit(t, rs, "Éric", "eric@example.com", "électricité", 4)
	assert.Equal(t, "Électricité Générale", conf.ResolvedService)
}

func TestResolveServiceEmptyLabel(t *testing.T) {
	rs, _ := newTestStore(t, "Interior Painting")
	_, err := rs.ResolveServiceID(context.Background(), "")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestReviewStats(t *testing.T) {
	rs, _ := newTestStore(t, "Interior Painting", "Furniture Assembly", "Decorative Moldings")
	ctx := context.Background()

	submit(t, rs, "Ana", "ana@example.com", "Assembly", 5)
	submit(t, rs, "Ben", "ben@example.com", "Assembly", 4)
	submit(t, rs, "Cleo", "cleo@example.com", "Assembly", 4)
	submit(t, rs, "Dan", "dan@example.com", "Painting", 2)

	stats, err := rs.ReviewStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "Furniture Assembly", stats[0].ServiceName)
	assert.Equal(t, 3, stats[0].TotalReviews)
	assert.InDelta(t, 4.3333, stats[0].AverageRating, 0.0001)
	assert.Equal(t, 67, stats[0].Rating4Percent)
	assert.Equal(t, 33, stats[0].Rating5Percent)
	assert.Equal(t, 0, stats[0].Rating1Percent)

	assert.Equal(t, "Interior Painting", stats[1].ServiceName)
	assert.Equal(t, 100, stats[1].Rating2Percent)

	assert.Equal(t, "Decorative Moldings", stats[2].ServiceName)
	assert.Equal(t, 0, stats[2].TotalReviews)
	assert.Equal(t, 0.0, stats[2].AverageRating)
	assert.Equal(t, 0, stats[2].Rating5Percent)
}

func TestServiceStats(t *testing.T) {
	rs, _ := newTestStore(t, "Interior Painting", "Furniture Assembly")
	ctx := context.Background()
	submit(t, rs, "Ana", "ana@example.com", "Painting", 5)

	got, err := rs.ServiceStats(ctx, "painting")
	require.NoError(t, err)
	assert.Equal(t, "Interior Painting", got.ServiceName)
	assert.Equal(t, 1, got.TotalReviews)
	assert.Equal(t, 5.0, got.AverageRating)
	assert.Equal(t, 100, got.Rating5Percent)

	_, err = rs.ServiceStats(ctx, "Plumbing")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestListServices(t *testing.T) {
	rs, _ := newTestStore(t, "Interior Painting", "Cabinet Renovation")

	services, err := rs.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "Cabinet Renovation", services[0].Name)
	assert.Equal(t, "Interior Painting", services[1].Name)
}

func TestStorageErrorOnClosedDatabase(t *testing.T) {
	rs, db := newTestStore(t, "Interior Painting")
	require.NoError(t, database.Close(db))

	_, err := rs.ListServices(context.Background())
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "list services", se.Op)

	_, err = rs.CreateReview(context.Background(), models.ReviewSubmission{
		Name: "Ana", Email: "ana@example.com", Service: "Painting", Rating: 5, Comment: "Great",
	})
	assert.ErrorAs(t, err, &se)
}
