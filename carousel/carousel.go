// Package carousel holds the review carousel state: the active service
// filter, the responsive page size and the cursor into the filtered list.
// It knows nothing about rendering; View produces a render-ready model.
//
// An Engine is not safe for concurrent use.
package carousel

import (
	"time"

	"handyman/ratings"
)

// AllServices is the filter tag that selects every review.
const AllServices = "all"

// Viewport breakpoints, in CSS pixels.
const (
	MediumWidth = 768
	WideWidth   = 1200
)

// Review is the part of a review the carousel shows and filters on.
type Review struct {
	ID           uint
	CustomerName string
	Service      string
	Rating       int
	Comment      string
	Date         time.Time
	Verified     bool
}

// Engine is the carousel state machine.
type Engine struct {
	all      []Review
	filter   string
	filtered []Review
	pageSize int
	cursor   int
}

// New returns an engine over reviews with the "all" filter active.
func New(reviews []Review, pageSize int) *Engine {
	e := &Engine{
		all:      append([]Review(nil), reviews...),
		filter:   AllServices,
		pageSize: normalizePageSize(pageSize),
	}
	e.refilter()
	return e
}

// PageSizeFor maps a viewport width to the number of reviews shown at once.
func PageSizeFor(width int) int {
	switch {
	case width < MediumWidth:
		return 1
	case width < WideWidth:
		return 2
	default:
		return 3
	}
}

func normalizePageSize(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// ApplyFilter selects the reviews of one service, or all of them for
// AllServices, keeping their relative order. The cursor returns to 0.
func (e *Engine) ApplyFilter(tag string) {
	if tag == "" {
		tag = AllServices
	}
	e.filter = tag
	e.refilter()
	e.cursor = 0
}

func (e *Engine) refilter() {
	if e.filter == AllServices {
		e.filtered = e.all
		return
	}
	e.filtered = make([]Review, 0, len(e.all))
	for _, r := range e.all {
		if r.Service == e.filter {
			e.filtered = append(e.filtered, r)
		}
	}
}

// Filter returns the active filter tag.
func (e *Engine) Filter() string { return e.filter }

// Len is the number of reviews passing the active filter.
func (e *Engine) Len() int { return len(e.filtered) }

// Cursor is the index of the first visible review.
func (e *Engine) Cursor() int { return e.cursor }

// PageSize is the number of reviews visible at once.
func (e *Engine) PageSize() int { return e.pageSize }

// lastCursor is the greatest cursor that still fills a whole window.
func (e *Engine) lastCursor() int {
	return max(0, len(e.filtered)-e.pageSize)
}

// CanNext reports whether Next would move the cursor.
func (e *Engine) CanNext() bool { return e.cursor < e.lastCursor() }

// CanPrevious reports whether Previous would move the cursor.
func (e *Engine) CanPrevious() bool { return e.cursor > 0 }

// Next advances one page, stopping at the last full window. It reports
// whether the cursor moved.
func (e *Engine) Next() bool {
	if !e.CanNext() {
		return false
	}
	e.cursor = min(e.cursor+e.pageSize, e.lastCursor())
	return true
}

// Previous moves back one page, stopping at 0. It reports whether the
// cursor moved.
func (e *Engine) Previous() bool {
	if !e.CanPrevious() {
		return false
	}
	e.cursor = max(0, e.cursor-e.pageSize)
	return true
}

// GoToPage jumps to page i, clamped like Next.
func (e *Engine) GoToPage(i int) {
	if i < 0 {
		i = 0
	}
	e.cursor = min(i*e.pageSize, e.lastCursor())
}

// Window returns the visible reviews. The slice aliases engine state and
// must not be modified.
func (e *Engine) Window() []Review {
	if len(e.filtered) == 0 {
		return nil
	}
	end := min(e.cursor+e.pageSize, len(e.filtered))
	return e.filtered[e.cursor:end]
}

// PageCount is ceil(Len/PageSize).
func (e *Engine) PageCount() int {
	return (len(e.filtered) + e.pageSize - 1) / e.pageSize
}

// ActivePage is floor(cursor/pageSize), the indicator marked active. On a
// clamped final window this can be short of the last page; GoToPage still
// reaches it.
func (e *Engine) ActivePage() int {
	pages := e.PageCount()
	if pages == 0 {
		return 0
	}
	return min(e.cursor/e.pageSize, pages-1)
}

// Stats summarises the ratings of the filtered reviews.
func (e *Engine) Stats() ratings.Summary {
	var s ratings.Summary
	for _, r := range e.filtered {
		s.Add(r.Rating)
	}
	return s
}

// Add prepends a freshly submitted review. It shows up under the active
// filter only if it matches, and the cursor resets so it is visible.
func (e *Engine) Add(r Review) {
	all := make([]Review, 0, len(e.all)+1)
	all = append(all, r)
	e.all = append(all, e.all...)
	e.refilter()
	e.cursor = 0
}

// Resize recomputes the page size for a viewport width.
func (e *Engine) Resize(width int) {
	e.SetPageSize(PageSizeFor(width))
}

// SetPageSize changes the page size and clamps the cursor into
// [0, max(0, Len-pageSize)].
func (e *Engine) SetPageSize(n int) {
	e.pageSize = normalizePageSize(n)
	e.cursor = min(max(e.cursor, 0), e.lastCursor())
}

// Services lists the distinct service tags in first-seen order, for
// building filter buttons.
func (e *Engine) Services() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range e.all {
		if !seen[r.Service] {
			seen[r.Service] = true
			out = append(out, r.Service)
		}
	}
	return out
}
