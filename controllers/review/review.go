package reviewController

import (
	"context"
	"errors"
	"strings"

	"handyman/catalog"
	"handyman/database"
	"handyman/middleware"
	"handyman/models"
	"handyman/store"
	reviewValidator "handyman/validators/review"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// Handler serves the review API.
type Handler struct {
	store   *store.ReviewStore
	catalog *catalog.Catalog
	db      *gorm.DB
	log     *zap.Logger
}

func NewHandler(rs *store.ReviewStore, cat *catalog.Catalog, db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{
		store:   rs,
		catalog: cat,
		db:      db,
		log:     log.Named("reviews"),
	}
}

func (h *Handler) GetReviews(c *fiber.Ctx) error {
	query, ok := c.Locals(reviewValidator.QueryKey).(reviewValidator.ReviewQuery)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters!")
	}

	reviews, err := h.store.ListReviewsByService(c.UserContext(), query.FeaturedOnly, query.Service)
	if err != nil {
		return h.respondError(c, "Error fetching reviews", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, "", reviews)
}

// GetReviewStats returns every service's statistics, or a single object
// when ?service= is given.
func (h *Handler) GetReviewStats(c *fiber.Ctx) error {
	service := strings.TrimSpace(c.Query("service"))
	if service == "" {
		stats, err := h.store.ReviewStats(c.UserContext())
		if err != nil {
			return h.respondError(c, "Error fetching review statistics", err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, "", stats)
	}

	stats, err := h.store.ServiceStats(c.UserContext(), service)
	if err != nil {
		return h.respondError(c, "Error fetching review statistics", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, "", stats)
}

func (h *Handler) GetServices(c *fiber.Ctx) error {
	services, err := h.store.ListServices(c.UserContext())
	if err != nil {
		return h.respondError(c, "Error fetching services", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, "", services)
}

func (h *Handler) SubmitReview(c *fiber.Ctx) error {
	sub, ok := c.Locals(reviewValidator.SubmissionKey).(models.ReviewSubmission)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!")
	}

	confirmation, err := h.store.CreateReview(c.UserContext(), sub)
	if err != nil {
		return h.respondError(c, "Error creating review", err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, "Review created successfully", confirmation)
}

// TranslationsResponse is the body of GET /api/translations.
type TranslationsResponse struct {
	Language     string            `json:"language"`
	Languages    []string          `json:"languages"`
	Translations map[string]string `json:"translations"`
}

// GetTranslations picks the language from ?lang= and falls back to the
// Accept-Language header.
func (h *Handler) GetTranslations(c *fiber.Ctx) error {
	pref := strings.TrimSpace(c.Query("lang"))
	if pref == "" {
		pref = c.Get(fiber.HeaderAcceptLanguage)
	}
	tag := h.catalog.Match(pref)

	return middleware.JsonResponse(c, fiber.StatusOK, "", TranslationsResponse{
		Language:     tag.String(),
		Languages:    tagStrings(h.catalog.Languages()),
		Translations: h.catalog.Translations(tag),
	})
}

func tagStrings(tags []language.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := database.Ping(c.UserContext(), h.db); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "Database unavailable")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, "", fiber.Map{"status": "ok"})
}

// respondError maps store errors to HTTP statuses. Storage failures are
// reported with a generic message; the cause stays in the log.
func (h *Handler) respondError(c *fiber.Ctx, message string, err error) error {
	var ve *store.ValidationError
	var nf *store.NotFoundError
	switch {
	case errors.As(err, &ve):
		return middleware.ValidationErrorResponse(c, ve.Fields)
	case errors.As(err, &nf):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "Service not found: "+nf.Key)
	case errors.Is(err, context.Canceled):
		return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, message)
	default:
		h.log.Error(message,
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals("requestid")),
			zap.Error(err))
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, message)
	}
}
