package reviewValidator

import (
	"errors"
	"strconv"
	"strings"

	"handyman/middleware"
	"handyman/models"
	"handyman/store"

	"github.com/gofiber/fiber/v2"
)

// Locals keys under which the validated input is handed to the controller.
const (
	SubmissionKey = "validatedReview"
	QueryKey      = "validatedReviewQuery"
)

// ReviewQuery is the validated query of GET /api/reviews.
type ReviewQuery struct {
	Service      string
	FeaturedOnly bool
}

// SubmitReview validator middleware
func SubmitReview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(models.ReviewSubmission)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!")
		}

		sub, err := store.ValidateSubmission(*reqData)
		if err != nil {
			var ve *store.ValidationError
			if errors.As(err, &ve) {
				return middleware.ValidationErrorResponse(c, ve.Fields)
			}
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
		}

		c.Locals(SubmissionKey, sub)
		return c.Next()
	}
}

// ListReviews validator middleware
func ListReviews() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Service  string `query:"service"`
			Featured string `query:"featured"`
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters!")
		}

		errs := make(map[string]string)

		query := ReviewQuery{Service: strings.TrimSpace(reqData.Service)}
		if len(query.Service) > 100 {
			errs["service"] = "must be at most 100 characters"
		}

		// absent means every review
		if f := strings.TrimSpace(reqData.Featured); f != "" {
			featured, err := strconv.ParseBool(f)
			if err != nil {
				errs["featured"] = "must be true or false"
			}
			query.FeaturedOnly = featured
		}

		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals(QueryKey, query)
		return c.Next()
	}
}
