package dedup

import "trustpilot-scraper/models"

// Deduplicator tracks review identities seen during one run.
// The review URL is the identity key. Not safe for concurrent use; the
// orchestrator feeds it from a single goroutine.
type Deduplicator struct {
	seen map[string]bool
}

// New creates an empty Deduplicator
func New() *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]bool),
	}
}

// IsNew reports whether the review has not been seen before and records it
func (d *Deduplicator) IsNew(review models.Review) bool {
	if d.seen[review.URL] {
		return false
	}
	d.seen[review.URL] = true
	return true
}

// Filter returns the reviews not seen before, preserving their order
func (d *Deduplicator) Filter(reviews []models.Review) []models.Review {
	var fresh []models.Review
	for _, review := range reviews {
		if d.IsNew(review) {
			fresh = append(fresh, review)
		}
	}
	return fresh
}

// Len returns how many distinct reviews have been seen
func (d *Deduplicator) Len() int {
	return len(d.seen)
}
