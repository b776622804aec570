package aggregate

import (
	"trustpilot-scraper/filter"
	"trustpilot-scraper/models"
)

// Aggregator folds per-page output into the running result.
// Reviews are expected to arrive already deduplicated and in page order, so
// the stored sequence is first-seen order. One instance exists per run.
type Aggregator struct {
	filter      *filter.ReviewFilter
	reviews     []models.Review
	business    models.BusinessInfo
	filteredOut int
}

// New creates a new Aggregator applying the given filter at accept-time
func New(f *filter.ReviewFilter) *Aggregator {
	return &Aggregator{
		filter: f,
	}
}

// Accept folds one page's reviews and BusinessInfo fragment into the result.
// Returns how many reviews were kept after filtering.
func (a *Aggregator) Accept(reviews []models.Review, fragment models.BusinessInfo) int {
	kept := 0
	for _, review := range reviews {
		if !a.filter.Keep(review) {
			a.filteredOut++
			continue
		}
		a.reviews = append(a.reviews, review)
		kept++
	}

	a.mergeBusinessInfo(fragment)

	return kept
}

// mergeBusinessInfo overwrites fields only when the fragment provides a
// non-empty value, so sparse pages never blank out captured data
func (a *Aggregator) mergeBusinessInfo(fragment models.BusinessInfo) {
	if fragment.DisplayName != "" {
		a.business.DisplayName = fragment.DisplayName
	}
	if fragment.TrustScore != 0 {
		a.business.TrustScore = fragment.TrustScore
	}
	if fragment.TotalReviews != 0 {
		a.business.TotalReviews = fragment.TotalReviews
	}
	if fragment.AverageRating != 0 {
		a.business.AverageRating = fragment.AverageRating
	}
}

// FilteredOut returns how many reviews the filter excluded
func (a *Aggregator) FilteredOut() int {
	return a.filteredOut
}

// Result assembles the final ScrapeResult. The returned value owns copies of
// the accumulated state, so later Accept calls cannot mutate it.
func (a *Aggregator) Result(attempted int, skipped []models.SkippedPage) *models.ScrapeResult {
	reviews := make([]models.Review, len(a.reviews))
	copy(reviews, a.reviews)

	var skippedCopy []models.SkippedPage
	if len(skipped) > 0 {
		skippedCopy = make([]models.SkippedPage, len(skipped))
		copy(skippedCopy, skipped)
	}

	return &models.ScrapeResult{
		Reviews:        reviews,
		BusinessInfo:   a.business,
		PagesAttempted: attempted,
		SkippedPages:   skippedCopy,
	}
}
