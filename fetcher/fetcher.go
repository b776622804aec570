package fetcher

import (
	"context"

	"trustpilot-scraper/models"
)

// Fetcher interface defines the contract for page fetching implementations
type Fetcher interface {
	// Fetch retrieves the raw document at the given URL, retrying transient
	// failures. A returned error is always a *FetchError.
	Fetch(ctx context.Context, url string) (*models.RawDocument, error)
}
