package carousel

import (
	"fmt"
	"math"

	"handyman/ratings"
)

// Star is how one of the five average-rating stars is drawn.
type Star string

const (
	StarFull  Star = "full"
	StarHalf  Star = "half"
	StarEmpty Star = "empty"
)

// Indicator is one page dot under the carousel.
type Indicator struct {
	Page   int  `json:"page"`
	Active bool `json:"active"`
}

// StatsView is the rating summary box.
type StatsView struct {
	Count        int                    `json:"count"`
	Average      float64                `json:"average"`
	AverageLabel string                 `json:"average_label"`
	Percentages  [ratings.MaxStars]int  `json:"percentages"` // index 0 is one star
	Stars        [ratings.MaxStars]Star `json:"stars"`
}

// View is everything a renderer needs for one frame.
type View struct {
	Filter      string      `json:"filter"`
	Services    []string    `json:"services"`
	Reviews     []Review    `json:"reviews"`
	Cursor      int         `json:"cursor"`
	PageSize    int         `json:"page_size"`
	Indicators  []Indicator `json:"indicators"`
	CanPrevious bool        `json:"can_previous"`
	CanNext     bool        `json:"can_next"`
	Empty       bool        `json:"empty"`
	Stats       StatsView   `json:"stats"`
}

// View builds the current view model.
func (e *Engine) View() View {
	pages := e.PageCount()
	active := e.ActivePage()
	indicators := make([]Indicator, pages)
	for i := range indicators {
		indicators[i] = Indicator{Page: i, Active: i == active}
	}

	window := e.Window()
	return View{
		Filter:      e.filter,
		Services:    e.Services(),
		Reviews:     append([]Review(nil), window...),
		Cursor:      e.cursor,
		PageSize:    e.pageSize,
		Indicators:  indicators,
		CanPrevious: e.CanPrevious(),
		CanNext:     e.CanNext(),
		Empty:       len(e.filtered) == 0,
		Stats:       statsView(e.Stats()),
	}
}

func statsView(s ratings.Summary) StatsView {
	avg := s.Average()
	return StatsView{
		Count:        s.Total,
		Average:      avg,
		AverageLabel: fmt.Sprintf("%.1f", avg),
		Percentages:  s.Percentages(),
		Stars:        StarsFor(avg),
	}
}

// StarsFor draws an average as five stars: full up to floor(avg), a half
// star when the remainder reaches .5, empty otherwise.
func StarsFor(avg float64) [ratings.MaxStars]Star {
	var out [ratings.MaxStars]Star
	whole := math.Floor(avg)
	for i := 1; i <= ratings.MaxStars; i++ {
		switch {
		case float64(i) <= whole:
			out[i-1] = StarFull
		case float64(i)-0.5 <= avg:
			out[i-1] = StarHalf
		default:
			out[i-1] = StarEmpty
		}
	}
	return out
}
