package stats

import (
	"testing"

	"trustpilot-scraper/models"
)

func TestSummarize(t *testing.T) {
	reviews := []models.Review{
		{Rating: 5, Location: "DE", Date: "2023-01-05"},
		{Rating: 4, Location: "DE", Date: "2023-03-01"},
		{Rating: 5, Location: "US", Date: "2022-11-20"},
		{Rating: 1, Location: "FR", Date: "vor 3 Tagen"}, // unparseable raw date
	}

	s := Summarize(reviews)

	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.MinRating != 1 || s.MaxRating != 5 {
		t.Errorf("Min/Max = %d/%d, want 1/5", s.MinRating, s.MaxRating)
	}
	if want := 15.0 / 4.0; s.AverageRating != want {
		t.Errorf("AverageRating = %v, want %v", s.AverageRating, want)
	}

	if len(s.ByLocation) != 3 || s.ByLocation[0].Location != "DE" || s.ByLocation[0].Count != 2 {
		t.Errorf("ByLocation = %+v, want DE first with 2 reviews", s.ByLocation)
	}
	if s.ByLocation[0].AverageRating != 4.5 {
		t.Errorf("DE average = %v, want 4.5", s.ByLocation[0].AverageRating)
	}

	// Highest rating first, absent buckets skipped
	if len(s.ByRating) != 3 || s.ByRating[0].Rating != 5 || s.ByRating[0].Count != 2 {
		t.Errorf("ByRating = %+v", s.ByRating)
	}
	if s.ByRating[0].Percent != 50 {
		t.Errorf("5-star percent = %v, want 50", s.ByRating[0].Percent)
	}

	// Raw-text dates stay out of the range
	if s.OldestDate != "2022-11-20" || s.NewestDate != "2023-03-01" {
		t.Errorf("date range = %q..%q", s.OldestDate, s.NewestDate)
	}
}

func TestSummarize_TieBreakByLocationName(t *testing.T) {
	reviews := []models.Review{
		{Rating: 3, Location: "US", Date: "2023-01-01"},
		{Rating: 3, Location: "DE", Date: "2023-01-02"},
	}

	s := Summarize(reviews)
	if s.ByLocation[0].Location != "DE" || s.ByLocation[1].Location != "US" {
		t.Errorf("equal counts should order by name: %+v", s.ByLocation)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || len(s.ByLocation) != 0 || len(s.ByRating) != 0 {
		t.Errorf("empty input produced %+v", s)
	}
}
