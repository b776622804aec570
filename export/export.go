package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"trustpilot-scraper/models"
)

// Output file names, matching what downstream consumers expect
const (
	JSONFile          = "reviews.json"
	CSVFile           = "reviews.csv"
	CSVByLocationFile = "reviews_by_location.csv"
)

var csvHeader = []string{"Date", "Author", "Body", "Heading", "Rating", "Location", "URL"}

// Writer writes scrape results to files in a directory
type Writer struct {
	dir string
}

// NewWriter creates a new Writer targeting the given directory
func NewWriter(dir string) *Writer {
	return &Writer{
		dir: dir,
	}
}

// jsonDocument is the shape of the reviews.json export
type jsonDocument struct {
	BusinessInfo models.BusinessInfo `json:"business_info"`
	Reviews      []models.Review     `json:"reviews"`
	Statistics   struct {
		TotalReviewsScraped int  `json:"total_reviews_scraped"`
		PagesAttempted      int  `json:"pages_attempted"`
		PagesSkipped        int  `json:"pages_skipped"`
		Filter5StarsActive  bool `json:"filter_5_stars_active"`
	} `json:"statistics"`
}

// WriteJSON writes the full result, business info included, to reviews.json
func (w *Writer) WriteJSON(result *models.ScrapeResult, filterActive bool) error {
	doc := jsonDocument{
		BusinessInfo: result.BusinessInfo,
		Reviews:      result.Reviews,
	}
	doc.Statistics.TotalReviewsScraped = len(result.Reviews)
	doc.Statistics.PagesAttempted = result.PagesAttempted
	doc.Statistics.PagesSkipped = len(result.SkippedPages)
	doc.Statistics.Filter5StarsActive = filterActive

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	path := filepath.Join(w.dir, JSONFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// WriteCSV writes the reviews in result order to reviews.csv
func (w *Writer) WriteCSV(reviews []models.Review) error {
	return w.writeCSVFile(CSVFile, reviews)
}

// WriteCSVByLocation writes the reviews grouped by location (and newest
// first within a location) to reviews_by_location.csv
func (w *Writer) WriteCSVByLocation(reviews []models.Review) error {
	sorted := make([]models.Review, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Location != sorted[j].Location {
			return sorted[i].Location < sorted[j].Location
		}
		return sorted[i].Date > sorted[j].Date
	})

	return w.writeCSVFile(CSVByLocationFile, sorted)
}

func (w *Writer) writeCSVFile(name string, reviews []models.Review) error {
	path := filepath.Join(w.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, review := range reviews {
		record := []string{
			review.Date,
			review.Author,
			review.Body,
			review.Heading,
			strconv.Itoa(review.Rating),
			review.Location,
			review.URL,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	return nil
}
