package stats

import (
	"sort"

	"trustpilot-scraper/models"
)

// LocationStat summarizes the reviews from one country
type LocationStat struct {
	Location      string
	Count         int
	AverageRating float64
}

// RatingStat is one bucket of the rating distribution
type RatingStat struct {
	Rating  int
	Count   int
	Percent float64
}

// Summary holds aggregate statistics over a scraped review set
type Summary struct {
	Total         int
	AverageRating float64
	MinRating     int
	MaxRating     int
	ByLocation    []LocationStat // most reviews first
	ByRating      []RatingStat   // highest rating first, only present buckets
	OldestDate    string
	NewestDate    string
}

// Summarize computes summary statistics for a review set
func Summarize(reviews []models.Review) *Summary {
	s := &Summary{Total: len(reviews)}
	if len(reviews) == 0 {
		return s
	}

	locationCounts := make(map[string]int)
	locationRatings := make(map[string]int)
	ratingCounts := make(map[int]int)
	ratingSum := 0
	s.MinRating = reviews[0].Rating
	s.MaxRating = reviews[0].Rating

	for _, review := range reviews {
		locationCounts[review.Location]++
		locationRatings[review.Location] += review.Rating
		ratingCounts[review.Rating]++
		ratingSum += review.Rating

		if review.Rating < s.MinRating {
			s.MinRating = review.Rating
		}
		if review.Rating > s.MaxRating {
			s.MaxRating = review.Rating
		}
		// Dates are normalized to YYYY-MM-DD, so string order is date order.
		// Unparseable raw values are left out of the range.
		if isISODate(review.Date) {
			if s.OldestDate == "" || review.Date < s.OldestDate {
				s.OldestDate = review.Date
			}
			if review.Date > s.NewestDate {
				s.NewestDate = review.Date
			}
		}
	}

	s.AverageRating = float64(ratingSum) / float64(len(reviews))

	for location, count := range locationCounts {
		s.ByLocation = append(s.ByLocation, LocationStat{
			Location:      location,
			Count:         count,
			AverageRating: float64(locationRatings[location]) / float64(count),
		})
	}
	sort.Slice(s.ByLocation, func(i, j int) bool {
		if s.ByLocation[i].Count != s.ByLocation[j].Count {
			return s.ByLocation[i].Count > s.ByLocation[j].Count
		}
		return s.ByLocation[i].Location < s.ByLocation[j].Location
	})

	for rating := 5; rating >= 1; rating-- {
		count := ratingCounts[rating]
		if count == 0 {
			continue
		}
		s.ByRating = append(s.ByRating, RatingStat{
			Rating:  rating,
			Count:   count,
			Percent: float64(count) / float64(len(reviews)) * 100,
		})
	}

	return s
}

// isISODate checks for the YYYY-MM-DD shape without a full parse
func isISODate(date string) bool {
	if len(date) != 10 || date[4] != '-' || date[7] != '-' {
		return false
	}
	for i, c := range date {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
