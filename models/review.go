package models

// Review represents a single review scraped from a business listing page
type Review struct {
	Date     string `json:"Date"`
	Author   string `json:"Author"`
	Body     string `json:"Body"`
	Heading  string `json:"Heading"`
	Rating   int    `json:"Rating"`
	Location string `json:"Location"` // ISO-like country code, "unknown" if missing
	URL      string `json:"URL"`      // absolute review URL, identity key for dedup
}

// BusinessInfo holds business-level data extracted from page markup.
// A zero value means the field has not been seen on any page yet.
type BusinessInfo struct {
	DisplayName   string  `json:"displayName,omitempty"`
	TrustScore    float64 `json:"trustScore,omitempty"`
	TotalReviews  int     `json:"numberOfReviews,omitempty"`
	AverageRating float64 `json:"stars,omitempty"`
}

// SkippedPage records a page that could not be fetched or parsed
type SkippedPage struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// ScrapeResult is the final output of one orchestration run.
// Reviews are deduplicated and ordered by first encounter across pages.
type ScrapeResult struct {
	Reviews        []Review      `json:"reviews"`
	BusinessInfo   BusinessInfo  `json:"business_info"`
	PagesAttempted int           `json:"pages_attempted"`
	SkippedPages   []SkippedPage `json:"skipped_pages,omitempty"`
}
