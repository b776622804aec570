package filter

import (
	"testing"

	"trustpilot-scraper/models"
)

func TestKeep(t *testing.T) {
	tests := []struct {
		name          string
		fiveStarsOnly bool
		rating        int
		expected      bool
	}{
		{"no filter keeps 1 star", false, 1, true},
		{"no filter keeps 5 stars", false, 5, true},
		{"filter keeps 5 stars", true, 5, true},
		{"filter drops 4 stars", true, 4, false},
		{"filter drops 1 star", true, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewReviewFilter(tt.fiveStarsOnly)
			got := f.Keep(models.Review{Rating: tt.rating})
			if got != tt.expected {
				t.Errorf("Keep(rating=%d) = %v, want %v", tt.rating, got, tt.expected)
			}
		})
	}
}

func TestActive(t *testing.T) {
	if NewReviewFilter(false).Active() {
		t.Error("Active() = true for pass-through filter")
	}
	if !NewReviewFilter(true).Active() {
		t.Error("Active() = false for 5-star filter")
	}
}
