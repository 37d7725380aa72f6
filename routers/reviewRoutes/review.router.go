package reviewRoutes

import (
	reviewControllers "handyman/controllers/review"
	reviewValidators "handyman/validators/review"

	"github.com/gofiber/fiber/v2"
)

func SetupReviewRoutes(app *fiber.App, h *reviewControllers.Handler) {
	apiGroup := app.Group("/api")

	reviewGroup := apiGroup.Group("/reviews")
	reviewGroup.Get("/", reviewValidators.ListReviews(), h.GetReviews)
	reviewGroup.Get("/stats", h.GetReviewStats)
	reviewGroup.Post("/", reviewValidators.SubmitReview(), h.SubmitReview)

	apiGroup.Get("/services", h.GetServices)
	apiGroup.Get("/translations", h.GetTranslations)

	app.Get("/health", h.Health)
}
