package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"trustpilot-scraper/aggregate"
	"trustpilot-scraper/config"
	"trustpilot-scraper/dedup"
	"trustpilot-scraper/fetcher"
	"trustpilot-scraper/filter"
	"trustpilot-scraper/models"
	"trustpilot-scraper/paginate"
	"trustpilot-scraper/parser"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// consecutiveEmptyLimit stops pagination after this many pages in a row
// yield no new reviews. The declared page count is advisory only; this
// heuristic defends against it being wrong.
const consecutiveEmptyLimit = 2

// Orchestrator drives the fetch -> parse -> dedup -> aggregate pipeline
type Orchestrator struct {
	fetcher fetcher.Fetcher
	parser  *parser.Parser
	cfg     *config.Config
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(f fetcher.Fetcher, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		fetcher: f,
		parser:  parser.NewParser(),
		cfg:     cfg,
	}
}

// pageOutcome is the fetched-and-parsed result of one page
type pageOutcome struct {
	page int
	data *parser.PageData
	err  error
}

// run holds the mutable state of one orchestration. Dedup and aggregate
// state is only ever touched from the orchestrating goroutine, even in
// parallel mode.
type run struct {
	dedup       *dedup.Deduplicator
	agg         *aggregate.Aggregator
	skipped     []models.SkippedPage
	skipErrs    *multierror.Error
	emptyStreak int
	attempted   int
}

// fold feeds one page outcome into dedup/aggregate state and reports
// whether pagination should stop
func (r *run) fold(outcome pageOutcome) bool {
	if outcome.err != nil {
		// A cancelled fetch is the run ending, not a page failure
		if errors.Is(outcome.err, context.Canceled) || errors.Is(outcome.err, context.DeadlineExceeded) {
			log.Printf("Cancelled, returning partial result after page %d\n", outcome.page)
			return true
		}
		log.Printf("Skipping page %d: %v\n", outcome.page, outcome.err)
		r.skipped = append(r.skipped, models.SkippedPage{Page: outcome.page, Reason: outcome.err.Error()})
		r.skipErrs = multierror.Append(r.skipErrs, fmt.Errorf("page %d: %w", outcome.page, outcome.err))
		r.emptyStreak++
	} else {
		fresh := r.dedup.Filter(outcome.data.Reviews)
		r.agg.Accept(fresh, outcome.data.Business)
		if len(fresh) == 0 {
			r.emptyStreak++
		} else {
			r.emptyStreak = 0
		}
	}

	if r.emptyStreak >= consecutiveEmptyLimit {
		log.Printf("No new reviews for %d consecutive pages, stopping early\n", consecutiveEmptyLimit)
		return true
	}
	return false
}

// Run scrapes all review pages for the business at baseURL. Only a failure
// to establish the first page is fatal; later pages that fail are recorded
// as skipped. Cancelling the context stops new fetches and returns whatever
// has been aggregated so far.
func (o *Orchestrator) Run(ctx context.Context, baseURL string) (*models.ScrapeResult, error) {
	if err := validateBaseURL(baseURL); err != nil {
		return nil, err
	}

	flt := filter.NewReviewFilter(o.cfg.Scrape.Filter5Stars)
	r := &run{
		dedup: dedup.New(),
		agg:   aggregate.New(flt),
	}

	// First page establishes business info and the page count hint
	firstURL, err := paginate.PageURL(baseURL, 1)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	log.Printf("Starting scraping from: %s\n", baseURL)
	r.attempted = 1
	raw, err := o.fetcher.Fetch(ctx, firstURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}
	firstPage, err := o.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse first page: %w", err)
	}
	// Page 1 goes through fold too so an empty first page seeds the
	// early-stop streak
	stopped := r.fold(pageOutcome{page: 1, data: firstPage})

	total := paginate.DiscoverTotalPages(raw)
	if o.cfg.Scrape.MaxPages > 0 && total > o.cfg.Scrape.MaxPages {
		log.Printf("Declared page count %d capped at configured maximum %d\n", total, o.cfg.Scrape.MaxPages)
		total = o.cfg.Scrape.MaxPages
	}
	log.Printf("Page 1 done, up to %d pages to go\n", total-1)

	workers := o.cfg.Scrape.Workers
	if workers < 1 {
		workers = 1
	}

	if !stopped {
		if workers == 1 {
			o.runSequential(ctx, r, baseURL, total)
		} else {
			o.runParallel(ctx, r, baseURL, total, workers)
		}
	}

	if err := r.skipErrs.ErrorOrNil(); err != nil {
		log.Printf("Completed with skipped pages: %v\n", err)
	}

	if flt.Active() {
		log.Printf("Filter excluded %d non-5-star reviews\n", r.agg.FilteredOut())
	}

	result := r.agg.Result(r.attempted, r.skipped)
	log.Printf("Scraping completed: %d pages attempted, %d skipped, %d unique reviews, %d kept\n",
		result.PagesAttempted, len(result.SkippedPages), r.dedup.Len(), len(result.Reviews))

	return result, nil
}

// runSequential visits pages 2..total one at a time in order
func (o *Orchestrator) runSequential(ctx context.Context, r *run, baseURL string, total int) {
	for page := 2; page <= total; page++ {
		if ctx.Err() != nil {
			log.Printf("Cancelled, returning partial result after page %d\n", page-1)
			return
		}
		r.attempted++
		if r.fold(o.fetchAndParse(ctx, baseURL, page)) {
			return
		}
	}
}

// runParallel fetches pages in windows of the worker count. Fetching and
// parsing happen concurrently, but outcomes are folded into dedup/aggregate
// state strictly in page-number order from this single goroutine, so the
// output stays deterministic.
func (o *Orchestrator) runParallel(ctx context.Context, r *run, baseURL string, total, workers int) {
	for start := 2; start <= total; {
		if ctx.Err() != nil {
			log.Println("Cancelled, returning partial result")
			return
		}

		end := start + workers - 1
		if end > total {
			end = total
		}

		outcomes := make([]pageOutcome, end-start+1)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := range outcomes {
			i := i
			page := start + i
			g.Go(func() error {
				outcomes[i] = o.fetchAndParse(gctx, baseURL, page)
				return nil
			})
		}
		_ = g.Wait()

		r.attempted += len(outcomes)
		for _, outcome := range outcomes {
			if r.fold(outcome) {
				return
			}
		}

		start = end + 1
	}
}

// fetchAndParse retrieves and parses a single page
func (o *Orchestrator) fetchAndParse(ctx context.Context, baseURL string, page int) pageOutcome {
	pageURL, err := paginate.PageURL(baseURL, page)
	if err != nil {
		return pageOutcome{page: page, err: err}
	}

	log.Printf("Scraping page %d...\n", page)
	raw, err := o.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return pageOutcome{page: page, err: err}
	}

	data, err := o.parser.Parse(raw)
	if err != nil {
		return pageOutcome{page: page, err: err}
	}

	return pageOutcome{page: page, data: data}
}

// validateBaseURL checks the base URL is a well-formed absolute HTTP(S) URL
func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base URL %q: must be an absolute http(s) URL", baseURL)
	}
	return nil
}
