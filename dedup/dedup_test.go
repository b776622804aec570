package dedup

import (
	"testing"

	"trustpilot-scraper/models"
)

func review(url string) models.Review {
	return models.Review{URL: url, Rating: 4}
}

func TestIsNew(t *testing.T) {
	d := New()

	if !d.IsNew(review("https://www.trustpilot.com/reviews/a")) {
		t.Error("first sighting should be new")
	}
	if d.IsNew(review("https://www.trustpilot.com/reviews/a")) {
		t.Error("second sighting should not be new")
	}
	if !d.IsNew(review("https://www.trustpilot.com/reviews/b")) {
		t.Error("different URL should be new")
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
}

func TestFilter_PreservesFirstSeenOrder(t *testing.T) {
	d := New()

	first := d.Filter([]models.Review{review("u1"), review("u2"), review("u1")})
	if len(first) != 2 || first[0].URL != "u1" || first[1].URL != "u2" {
		t.Fatalf("Filter() = %v, want [u1 u2]", first)
	}

	// Repeats across pages are dropped, new ones keep arrival order
	second := d.Filter([]models.Review{review("u2"), review("u3")})
	if len(second) != 1 || second[0].URL != "u3" {
		t.Fatalf("Filter() second page = %v, want [u3]", second)
	}
}
