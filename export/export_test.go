package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"trustpilot-scraper/models"
)

func sampleResult() *models.ScrapeResult {
	return &models.ScrapeResult{
		Reviews: []models.Review{
			{Date: "2023-07-10", Author: "Jane", Body: "Good", Heading: "Nice", Rating: 5, Location: "DE", URL: "https://www.trustpilot.com/reviews/a"},
			{Date: "2023-07-12", Author: "Bob", Body: "Bad", Heading: "Meh", Rating: 2, Location: "US", URL: "https://www.trustpilot.com/reviews/b"},
			{Date: "2023-07-11", Author: "Eve", Body: "Fine", Heading: "Ok", Rating: 4, Location: "DE", URL: "https://www.trustpilot.com/reviews/c"},
		},
		BusinessInfo:   models.BusinessInfo{DisplayName: "Example Inc", TrustScore: 4.2, TotalReviews: 3},
		PagesAttempted: 2,
		SkippedPages:   []models.SkippedPage{{Page: 2, Reason: "boom"}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return records
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	result := sampleResult()

	if err := NewWriter(dir).WriteCSV(result.Reviews); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records := readCSV(t, filepath.Join(dir, CSVFile))
	if len(records) != 4 {
		t.Fatalf("got %d rows, want header + 3 reviews", len(records))
	}

	wantHeader := []string{"Date", "Author", "Body", "Heading", "Rating", "Location", "URL"}
	for i, column := range wantHeader {
		if records[0][i] != column {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], column)
		}
	}

	// Rows keep result order
	if records[1][1] != "Jane" || records[2][1] != "Bob" || records[3][1] != "Eve" {
		t.Errorf("rows out of order: %v", records[1:])
	}
	if records[1][4] != "5" {
		t.Errorf("rating column = %q, want 5", records[1][4])
	}
}

func TestWriteCSVByLocation(t *testing.T) {
	dir := t.TempDir()
	result := sampleResult()

	if err := NewWriter(dir).WriteCSVByLocation(result.Reviews); err != nil {
		t.Fatalf("WriteCSVByLocation() error = %v", err)
	}

	records := readCSV(t, filepath.Join(dir, CSVByLocationFile))
	if len(records) != 4 {
		t.Fatalf("got %d rows, want 4", len(records))
	}

	// Grouped by location, newest first within a location
	wantAuthors := []string{"Eve", "Jane", "Bob"}
	for i, author := range wantAuthors {
		if records[i+1][1] != author {
			t.Errorf("row %d author = %q, want %q", i+1, records[i+1][1], author)
		}
	}

	// The plain export must not be affected by the sort
	original := result.Reviews
	if original[0].Author != "Jane" {
		t.Error("WriteCSVByLocation mutated the input slice")
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	result := sampleResult()

	if err := NewWriter(dir).WriteJSON(result, true); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, JSONFile))
	if err != nil {
		t.Fatalf("failed to read JSON export: %v", err)
	}

	var doc struct {
		BusinessInfo models.BusinessInfo `json:"business_info"`
		Reviews      []models.Review     `json:"reviews"`
		Statistics   struct {
			TotalReviewsScraped int  `json:"total_reviews_scraped"`
			PagesAttempted      int  `json:"pages_attempted"`
			PagesSkipped        int  `json:"pages_skipped"`
			Filter5StarsActive  bool `json:"filter_5_stars_active"`
		} `json:"statistics"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON export: %v", err)
	}

	if doc.BusinessInfo.DisplayName != "Example Inc" {
		t.Errorf("business_info.displayName = %q", doc.BusinessInfo.DisplayName)
	}
	if len(doc.Reviews) != 3 || doc.Reviews[0].URL != "https://www.trustpilot.com/reviews/a" {
		t.Errorf("reviews = %+v", doc.Reviews)
	}
	if doc.Statistics.TotalReviewsScraped != 3 || doc.Statistics.PagesAttempted != 2 ||
		doc.Statistics.PagesSkipped != 1 || !doc.Statistics.Filter5StarsActive {
		t.Errorf("statistics = %+v", doc.Statistics)
	}
}
