// Package client is the Go data layer for the review widget: typed calls
// to the review API and a loader that builds a carousel from them.
package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"handyman/carousel"
	"handyman/models"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

const defaultTimeout = 10 * time.Second

// Client talks to one review API. It is safe for concurrent use; Submit
// admits one submission at a time.
type Client struct {
	http       *resty.Client
	submitting atomic.Bool
}

// Option configures the resty client behind a Client built by New.
type Option func(*resty.Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(rc *resty.Client) { rc.SetTimeout(d) }
}

func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

// Close drops idle keep-alive connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

type envelope[T any] struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
	Data    T                 `json:"data"`
}

func call[T any](ctx context.Context, c *Client, method, path string, prepare func(*resty.Request)) (T, error) {
	var zero T
	op := method + " " + path

	var out envelope[T]
	req := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out)
	if prepare != nil {
		prepare(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		// a response with a body that would not decode still has a status
		if resp != nil && resp.RawResponse != nil {
			return zero, &APIError{Op: op, StatusCode: resp.StatusCode(), Message: resp.Status()}
		}
		return zero, &NetworkError{Op: op, Err: err}
	}
	if resp.IsError() || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = resp.Status()
		}
		return zero, &APIError{Op: op, StatusCode: resp.StatusCode(), Message: msg, Fields: out.Errors}
	}
	return out.Data, nil
}

// Reviews lists reviews, optionally narrowed to a service label and to
// featured reviews.
func (c *Client) Reviews(ctx context.Context, service string, featured bool) ([]models.ReviewListing, error) {
	return call[[]models.ReviewListing](ctx, c, http.MethodGet, "/api/reviews", func(r *resty.Request) {
		if service != "" {
			r.SetQueryParam("service", service)
		}
		if featured {
			r.SetQueryParam("featured", "true")
		}
	})
}

// Stats returns the statistics of every service.
func (c *Client) Stats(ctx context.Context) ([]models.ServiceStats, error) {
	return call[[]models.ServiceStats](ctx, c, http.MethodGet, "/api/reviews/stats", nil)
}

// ServiceStats returns the statistics of the service a label resolves to.
func (c *Client) ServiceStats(ctx context.Context, service string) (models.ServiceStats, error) {
	return call[models.ServiceStats](ctx, c, http.MethodGet, "/api/reviews/stats", func(r *resty.Request) {
		r.SetQueryParam("service", service)
	})
}

func (c *Client) Services(ctx context.Context) ([]models.Service, error) {
	return call[[]models.Service](ctx, c, http.MethodGet, "/api/services", nil)
}

// Translations is the dictionary served for one language.
type Translations struct {
	Language     string            `json:"language"`
	Languages    []string          `json:"languages"`
	Translations map[string]string `json:"translations"`
}

// Translations fetches the UI strings. An empty lang lets the server pick
// its default.
func (c *Client) Translations(ctx context.Context, lang string) (Translations, error) {
	return call[Translations](ctx, c, http.MethodGet, "/api/translations", func(r *resty.Request) {
		if lang != "" {
			r.SetQueryParam("lang", lang)
		}
	})
}

// Submit posts a review. A second call made while one is still running
// fails with ErrSubmitInFlight without touching the network.
func (c *Client) Submit(ctx context.Context, sub models.ReviewSubmission) (models.ReviewConfirmation, error) {
	if !c.submitting.CompareAndSwap(false, true) {
		return models.ReviewConfirmation{}, ErrSubmitInFlight
	}
	defer c.submitting.Store(false)

	return call[models.ReviewConfirmation](ctx, c, http.MethodPost, "/api/reviews", func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(sub)
	})
}

// Widget is the data behind one render of the review section.
type Widget struct {
	Carousel *carousel.Engine
	Stats    []models.ServiceStats
}

// Load fetches the review list and the per-service statistics in parallel
// and builds a carousel sized for width. The two responses are independent
// snapshots; a review created between them may show up in one only.
func (c *Client) Load(ctx context.Context, width int) (*Widget, error) {
	var (
		reviews []models.ReviewListing
		stats   []models.ServiceStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reviews, err = c.Reviews(gctx, "", false)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = c.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Widget{
		Carousel: carousel.New(ToCarousel(reviews), carousel.PageSizeFor(width)),
		Stats:    stats,
	}, nil
}

// ToCarousel converts API listings to carousel entries, keeping order.
func ToCarousel(listings []models.ReviewListing) []carousel.Review {
	out := make([]carousel.Review, len(listings))
	for i, l := range listings {
		out[i] = carousel.Review{
			ID:           l.ReviewID,
			CustomerName: l.CustomerName,
			Service:      l.ServiceName,
			Rating:       l.Rating,
			Comment:      l.Comment,
			Date:         l.ReviewDate,
			Verified:     l.IsVerified,
		}
	}
	return out
}

// Confirmed turns a submission confirmation into the carousel entry the
// widget prepends with Engine.Add.
func Confirmed(conf models.ReviewConfirmation, comment string) carousel.Review {
	return carousel.Review{
		ID:           conf.ReviewID,
		CustomerName: conf.CustomerName,
		Service:      conf.ResolvedService,
		Rating:       conf.Rating,
		Comment:      comment,
		Date:         conf.ReviewDate,
	}
}
