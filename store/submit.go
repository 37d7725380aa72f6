package store

import (
	"context"
	"errors"
	"time"

	"handyman/models"

	"github.com/jinzhu/now"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// projectLeadTime backdates the synthetic project's start date.
const projectLeadTime = 7 // days

// CreateReview validates a submission and stores it in one transaction:
// find or create the customer by email, resolve the service, create a
// completed project and insert the review. Any failure rolls the whole
// unit back, including a customer inserted along the way.
//
// A customer found by email keeps its stored name even when the submitted
// name differs.
func (rs *ReviewStore) CreateReview(ctx context.Context, in models.ReviewSubmission) (*models.ReviewConfirmation, error) {
	start := time.Now()
	sub, err := ValidateSubmission(in)
	if err != nil {
		return nil, rs.fail("validate review", start, err)
	}

	submittedAt := rs.clock()
	day := now.With(submittedAt).BeginningOfDay()

	var (
		review  models.Review
		service models.Service
	)
	err = rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customerID, err := findOrCreateCustomer(tx, sub.Name, sub.Email)
		if err != nil {
			return err
		}

		service, err = resolveService(tx, sub.Service)
		if err != nil {
			return err
		}

		project := models.Project{
			CustomerID: customerID,
			ServiceID:  service.ID,
			Title:      sub.Service + " Project",
			Status:     models.ProjectCompleted,
			StartDate:  datatypes.Date(day.AddDate(0, 0, -projectLeadTime)),
			EndDate:    datatypes.Date(day),
		}
		if err := tx.Omit(clause.Associations).Create(&project).Error; err != nil {
			return &StorageError{Op: "create project", Err: err}
		}

		review = models.Review{
			CustomerID: customerID,
			ServiceID:  service.ID,
			ProjectID:  project.ID,
			Rating:     sub.Rating,
			Comment:    sub.Comment,
			ReviewDate: submittedAt,
		}
		if err := tx.Omit(clause.Associations).Create(&review).Error; err != nil {
			return &StorageError{Op: "create review", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, rs.fail("create review", start, err)
	}

	// the stored timestamp may be truncated by the driver; report what was saved
	var saved models.Review
	if err := rs.db.WithContext(ctx).
		Select("id", "review_date").
		Where("id = ?", review.ID).
		Take(&saved).Error; err != nil {
		return nil, rs.fail("read created review", start, err)
	}

	rs.log.Info("review created",
		zap.Uint("review_id", saved.ID),
		zap.Uint("service_id", service.ID),
		zap.Int("rating", sub.Rating),
		zap.Duration("elapsed", time.Since(start)))

	return &models.ReviewConfirmation{
		ReviewID:        saved.ID,
		ReviewDate:      saved.ReviewDate,
		CustomerName:    sub.Name,
		ServiceName:     sub.Service,
		ResolvedService: service.Name,
		Rating:          sub.Rating,
	}, nil
}

// findOrCreateCustomer returns the id of the customer registered under
// email, inserting one if needed. The insert ignores a unique-email
// conflict and falls back to a lookup, so two first-time submissions for
// the same email racing each other both end up on the winner's row.
func findOrCreateCustomer(tx *gorm.DB, name, email string) (uint, error) {
	var existing models.Customer
	err := tx.Where("email = ?", email).Take(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, &StorageError{Op: "find customer", Err: err}
	}

	customer := models.Customer{Name: name, Email: email}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&customer)
	if res.Error != nil {
		return 0, &StorageError{Op: "create customer", Err: res.Error}
	}
	if res.RowsAffected == 1 && customer.ID != 0 {
		return customer.ID, nil
	}

	var winner models.Customer
	if err := tx.Where("email = ?", email).Take(&winner).Error; err != nil {
		return 0, &StorageError{Op: "find customer after conflict", Err: err}
	}
	return winner.ID, nil
}
