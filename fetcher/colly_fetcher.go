package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync/atomic"
	"time"

	"trustpilot-scraper/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

// CollyFetcher implements the Fetcher interface using colly
type CollyFetcher struct {
	base        *colly.Collector
	limiter     *rate.Limiter
	timeout     time.Duration
	maxAttempts int
	requests    atomic.Int64
}

// NewCollyFetcher creates a new CollyFetcher instance.
// delay is the minimum spacing between requests, shared across all pages
// (and across retries) issued through this fetcher.
func NewCollyFetcher(timeout time.Duration, maxAttempts int, delay time.Duration) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		// Retries revisit the same URL, so the visited-URL check must be off
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &CollyFetcher{
		base:        c,
		limiter:     rate.NewLimiter(limit, 1),
		timeout:     timeout,
		maxAttempts: maxAttempts,
	}
}

// RequestCount returns how many HTTP requests this fetcher has issued,
// counting every retry attempt
func (cf *CollyFetcher) RequestCount() int64 {
	return cf.requests.Load()
}

// Fetch implements the Fetcher interface. Transient failures (timeouts, 5xx,
// 429) are retried with exponential backoff up to maxAttempts; permanent
// failures (404, 403, malformed URL) surface immediately.
func (cf *CollyFetcher) Fetch(ctx context.Context, pageURL string) (*models.RawDocument, error) {
	if u, err := url.Parse(pageURL); err != nil || !u.IsAbs() {
		return nil, &FetchError{URL: pageURL, Kind: Permanent, Err: fmt.Errorf("malformed URL")}
	}

	var doc *models.RawDocument
	attempt := 0
	operation := func() error {
		if err := cf.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(&FetchError{URL: pageURL, Kind: Permanent, Err: err})
		}
		cf.requests.Add(1)
		attempt++

		raw, err := cf.fetchOnce(pageURL)
		if err != nil {
			if IsPermanent(err) {
				return backoff.Permanent(err)
			}
			log.Printf("Transient error fetching %s (attempt %d/%d): %v\n", pageURL, attempt, cf.maxAttempts, err)
			return err
		}
		doc = raw
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(cf.maxAttempts-1)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, &FetchError{URL: pageURL, Kind: Transient, Err: err}
	}

	return doc, nil
}

// fetchOnce performs a single request attempt.
// The base collector is cloned so per-request callbacks never accumulate.
func (cf *CollyFetcher) fetchOnce(pageURL string) (*models.RawDocument, error) {
	c := cf.base.Clone()
	c.SetRequestTimeout(cf.timeout)

	var doc *models.RawDocument
	var fetchErr *FetchError

	c.OnResponse(func(r *colly.Response) {
		body := make([]byte, len(r.Body))
		copy(body, r.Body)
		doc = &models.RawDocument{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       body,
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = &FetchError{
			URL:        pageURL,
			StatusCode: status,
			Kind:       classifyStatus(status),
			Err:        err,
		}
	})

	visitErr := c.Visit(pageURL)
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if visitErr != nil {
		return nil, &FetchError{URL: pageURL, Kind: Transient, Err: visitErr}
	}
	if doc == nil {
		return nil, &FetchError{URL: pageURL, Kind: Transient, Err: fmt.Errorf("no response received")}
	}

	return doc, nil
}
