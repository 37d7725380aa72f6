// Package ratings aggregates 1–5 star ratings into averages and per-star
// percentage distributions. Both the stats endpoint and the carousel
// summarise through it.
package ratings

import "math"

const (
	MinStars = 1
	MaxStars = 5
)

// Valid reports whether r is an accepted star rating.
func Valid(r int) bool {
	return r >= MinStars && r <= MaxStars
}

// Summary accumulates ratings. The zero value is an empty summary.
type Summary struct {
	Total  int
	Sum    int
	Counts [MaxStars]int // Counts[s-1] holds the number of s-star ratings
}

// Of summarises a list of ratings.
func Of(rs ...int) Summary {
	var s Summary
	for _, r := range rs {
		s.Add(r)
	}
	return s
}

// FromCounts builds a summary from precomputed per-star counts, as read from
// the stats view. Index 0 holds the 1-star count.
func FromCounts(counts [MaxStars]int) Summary {
	s := Summary{Counts: counts}
	for i, c := range counts {
		s.Total += c
		s.Sum += c * (i + 1)
	}
	return s
}

// Add records one rating. Out-of-range values count toward the total and
// the sum but not toward any star level.
func (s *Summary) Add(r int) {
	s.Total++
	s.Sum += r
	if Valid(r) {
		s.Counts[r-1]++
	}
}

// Average is Sum/Total, or 0 for an empty summary.
func (s Summary) Average() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Total)
}

// Percent returns round(100*count(star)/total) for a single star level.
// Levels are rounded independently, so the five values need not add up to 100.
func (s Summary) Percent(star int) int {
	if s.Total == 0 || !Valid(star) {
		return 0
	}
	return int(math.Round(100 * float64(s.Counts[star-1]) / float64(s.Total)))
}

// Percentages returns Percent for every level, index 0 being one star.
func (s Summary) Percentages() [MaxStars]int {
	var out [MaxStars]int
	for star := MinStars; star <= MaxStars; star++ {
		out[star-1] = s.Percent(star)
	}
	return out
}
