package paginate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"trustpilot-scraper/models"

	"github.com/PuerkitoBio/goquery"
)

// MaxTotalPages is a sanity cap on the declared page count. Anything above it
// is almost certainly a parsing artifact, so we clamp instead of failing.
const MaxTotalPages = 10000

// PageURL builds the URL for the given page number. Page 1 is the base URL
// with languages=all; later pages add the page parameter. The result is
// deterministic for a given (baseURL, page) pair.
func PageURL(baseURL string, page int) (string, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := parsedURL.Query()
	// languages=all returns reviews in every language, not just English
	query.Set("languages", "all")
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}
	parsedURL.RawQuery = query.Encode()

	return parsedURL.String(), nil
}

// nextDataPagination mirrors the pagination block inside the __NEXT_DATA__ JSON
type nextDataPagination struct {
	Props struct {
		PageProps struct {
			BusinessUnit struct {
				Reviews struct {
					Pagination struct {
						TotalPages  int `json:"totalPages"`
						CurrentPage int `json:"currentPage"`
					} `json:"pagination"`
				} `json:"reviews"`
			} `json:"businessUnit"`
		} `json:"pageProps"`
	} `json:"props"`
}

// DiscoverTotalPages determines the declared total page count from the first
// page document. It never fails: if no pagination marker can be found the
// default of 1 is returned, and implausibly large totals are clamped.
func DiscoverTotalPages(raw *models.RawDocument) int {
	if raw == nil || len(raw.Body) == 0 {
		return 1
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		log.Printf("Warning: Failed to parse first page for pagination: %v\n", err)
		return 1
	}

	if total := totalFromNextData(doc); total > 0 {
		return clampTotal(total)
	}
	if total := totalFromNav(doc); total > 0 {
		return clampTotal(total)
	}

	return 1
}

// totalFromNextData reads totalPages from the embedded __NEXT_DATA__ JSON blob
func totalFromNextData(doc *goquery.Document) int {
	script := doc.Find("script#__NEXT_DATA__").First()
	if script.Length() == 0 {
		return 0
	}

	var data nextDataPagination
	if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
		return 0
	}

	return data.Props.PageProps.BusinessUnit.Reviews.Pagination.TotalPages
}

// totalFromNav reads the page count from the pagination nav as a fallback.
// The last-page button carries the highest page number.
func totalFromNav(doc *goquery.Document) int {
	selectors := []string{
		"a[name='pagination-button-last']",
		"nav[aria-label*='agination'] a[aria-label*='age']",
		"nav[aria-label*='agination'] a",
	}

	pageNumRe := regexp.MustCompile(`(\d+)\s*$`)
	best := 0
	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			// Prefer the page parameter of the link, fall back to the label text
			if href, ok := s.Attr("href"); ok {
				if u, err := url.Parse(href); err == nil {
					if n, err := strconv.Atoi(u.Query().Get("page")); err == nil && n > best {
						best = n
						return
					}
				}
			}
			text := strings.TrimSpace(s.Text())
			if matches := pageNumRe.FindStringSubmatch(text); len(matches) > 1 {
				if n, err := strconv.Atoi(matches[1]); err == nil && n > best {
					best = n
				}
			}
		})
		if best > 0 {
			return best
		}
	}

	return best
}

func clampTotal(total int) int {
	if total > MaxTotalPages {
		log.Printf("Warning: Declared page count %d exceeds %d, clamping\n", total, MaxTotalPages)
		return MaxTotalPages
	}
	return total
}
