package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"trustpilot-scraper/config"
	"trustpilot-scraper/export"
	"trustpilot-scraper/fetcher"
	"trustpilot-scraper/models"
	"trustpilot-scraper/scraper"
	"trustpilot-scraper/stats"
)

func main() {
	// Parse command line arguments
	urlArg := flag.String("url", "", "Domain or full Trustpilot review URL (e.g. example.com)")
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	maxPages := flag.Int("pages", 0, "Maximum number of pages to scrape (0 = use config value)")
	workers := flag.Int("workers", 0, "Concurrent page fetches (0 = use config value)")
	outDir := flag.String("out", "", "Output directory for JSON/CSV files (default: config value)")
	filter5Stars := flag.Bool("filter-5-stars", false, "Only keep 5-star reviews")
	noFilter := flag.Bool("no-filter", false, "Keep all ratings (overrides -filter-5-stars)")
	flag.Parse()

	if *urlArg == "" {
		fmt.Fprintln(os.Stderr, "Error: -url is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := loadConfig(*configPath)

	// CLI flags override the config file
	if *maxPages > 0 {
		cfg.Scrape.MaxPages = *maxPages
	}
	if *workers > 0 {
		cfg.Scrape.Workers = *workers
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *filter5Stars {
		cfg.Scrape.Filter5Stars = true
	}
	// -no-filter has priority
	if *noFilter {
		cfg.Scrape.Filter5Stars = false
	}

	baseURL := buildBaseURL(*urlArg)

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("TRUSTPILOT REVIEW SCRAPER")
	if cfg.Scrape.Filter5Stars {
		fmt.Println("MODE: Only 5-star ratings")
	} else {
		fmt.Println("MODE: All ratings")
	}
	fmt.Printf("URL: %s\n", baseURL)
	fmt.Println(strings.Repeat("=", 60))

	// Ctrl-C stops issuing new fetches and keeps the partial result
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f := fetcher.NewCollyFetcher(
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
		cfg.Fetch.MaxAttempts,
		time.Duration(cfg.Fetch.DelaySeconds*float64(time.Second)),
	)

	orchestrator := scraper.NewOrchestrator(f, cfg)
	result, err := orchestrator.Run(ctx, baseURL)
	if err != nil {
		log.Fatalf("Scraping failed: %v\n", err)
	}

	printSummary(result, cfg.Scrape.Filter5Stars)

	writer := export.NewWriter(cfg.Output.Dir)
	if err := writer.WriteJSON(result, cfg.Scrape.Filter5Stars); err != nil {
		log.Printf("Warning: Failed to write JSON export: %v\n", err)
	} else {
		fmt.Printf("Reviews saved to '%s' (including business info)\n", export.JSONFile)
	}
	if err := writer.WriteCSV(result.Reviews); err != nil {
		log.Printf("Warning: Failed to write CSV export: %v\n", err)
	} else {
		fmt.Printf("Reviews saved to '%s'\n", export.CSVFile)
	}
	if err := writer.WriteCSVByLocation(result.Reviews); err != nil {
		log.Printf("Warning: Failed to write per-location CSV export: %v\n", err)
	} else {
		fmt.Printf("Reviews saved to '%s' (sorted by location)\n", export.CSVByLocationFile)
	}
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string) *config.Config {
	if _, err := os.Stat(configPath); err != nil {
		log.Println("Config file not found. Using default configuration.")
		return config.GetDefaultConfig()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
		return config.GetDefaultConfig()
	}
	return cfg
}

// buildBaseURL turns a bare domain into the Trustpilot review listing URL.
// Full URLs pass through unchanged.
func buildBaseURL(arg string) string {
	if strings.Contains(arg, "://") {
		return arg
	}
	return "https://www.trustpilot.com/review/" + arg
}

// printSummary prints business info and review statistics to the console
func printSummary(result *models.ScrapeResult, filterActive bool) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("RESULTS")
	fmt.Println(strings.Repeat("=", 60))

	info := result.BusinessInfo
	fmt.Println("\nBusiness Information:")
	if info.DisplayName != "" {
		fmt.Printf("   Name: %s\n", info.DisplayName)
	}
	if info.TrustScore > 0 {
		fmt.Printf("   TrustScore: %.1f/5\n", info.TrustScore)
	}
	if info.TotalReviews > 0 {
		fmt.Printf("   Total Reviews: %d\n", info.TotalReviews)
	}
	if info.AverageRating > 0 {
		fmt.Printf("   Average Stars: %.1f/5\n", info.AverageRating)
	}

	fmt.Printf("\nPages attempted: %d\n", result.PagesAttempted)
	if len(result.SkippedPages) > 0 {
		fmt.Printf("Pages skipped: %d", len(result.SkippedPages))
		for _, skipped := range result.SkippedPages {
			fmt.Printf(" [%d]", skipped.Page)
		}
		fmt.Println()
	}

	if len(result.Reviews) == 0 {
		fmt.Println("\nNo reviews found.")
		return
	}

	summary := stats.Summarize(result.Reviews)

	fmt.Printf("\nOverall Statistics (scraped reviews):\n")
	fmt.Printf("   Number of Reviews: %d\n", summary.Total)
	fmt.Printf("   Average Rating: %.2f/5\n", summary.AverageRating)
	fmt.Printf("   Highest Rating: %d/5\n", summary.MaxRating)
	fmt.Printf("   Lowest Rating: %d/5\n", summary.MinRating)
	if filterActive && info.TotalReviews > 0 {
		percentage := float64(summary.Total) / float64(info.TotalReviews) * 100
		fmt.Printf("   5-Star Reviews Percentage: %.1f%% (%d/%d)\n", percentage, summary.Total, info.TotalReviews)
	}

	fmt.Println("\nReviews by Location:")
	for _, location := range summary.ByLocation {
		fmt.Printf("   %s: %3d reviews (avg %.2f/5)\n", location.Location, location.Count, location.AverageRating)
	}

	fmt.Println("\nRating Distribution:")
	for _, bucket := range summary.ByRating {
		fmt.Printf("   %d stars: %3d reviews (%5.1f%%)\n", bucket.Rating, bucket.Count, bucket.Percent)
	}

	if summary.OldestDate != "" {
		fmt.Println("\nDate Range:")
		fmt.Printf("   Oldest Review: %s\n", summary.OldestDate)
		fmt.Printf("   Newest Review: %s\n", summary.NewestDate)
	}
}
