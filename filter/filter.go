package filter

import "trustpilot-scraper/models"

// ReviewFilter decides which reviews are kept in the final result
type ReviewFilter struct {
	fiveStarsOnly bool
}

// NewReviewFilter creates a new ReviewFilter instance
func NewReviewFilter(fiveStarsOnly bool) *ReviewFilter {
	return &ReviewFilter{
		fiveStarsOnly: fiveStarsOnly,
	}
}

// Keep checks if a review matches the filter criteria
func (f *ReviewFilter) Keep(review models.Review) bool {
	if f.fiveStarsOnly && review.Rating != 5 {
		return false
	}
	return true
}

// Active reports whether any filtering is in effect
func (f *ReviewFilter) Active() bool {
	return f.fiveStarsOnly
}
