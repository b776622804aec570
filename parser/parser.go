package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"trustpilot-scraper/models"

	"github.com/PuerkitoBio/goquery"
)

// reviewURLPrefix is where individual Trustpilot reviews live
const reviewURLPrefix = "https://www.trustpilot.com/reviews/"

// PageData is the output of parsing one page
type PageData struct {
	Reviews  []models.Review
	Business models.BusinessInfo
	// Dropped counts candidates discarded for an unresolvable rating or URL
	Dropped int
}

// Parser extracts review data from fetched pages
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts reviews and a BusinessInfo fragment from a raw document.
// The embedded __NEXT_DATA__ JSON blob is tried first; if it is missing or
// carries no reviews, the visible review cards are parsed instead. A page
// with zero extractable reviews is not an error.
func (p *Parser) Parse(raw *models.RawDocument) (*PageData, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page, ok := p.parseNextData(doc, raw.URL)
	if ok && len(page.Reviews) > 0 {
		return page, nil
	}

	// The JSON blob is present on every page variant, so a decodable blob
	// with zero reviews still falls through to the visible markup.
	cards := p.parseReviewCards(doc, raw.URL)
	if ok {
		cards.Business = preferBusiness(page.Business, cards.Business)
		cards.Dropped += page.Dropped
	}
	return cards, nil
}

// preferBusiness fills zero fields of primary from fallback
func preferBusiness(primary, fallback models.BusinessInfo) models.BusinessInfo {
	if primary.DisplayName == "" {
		primary.DisplayName = fallback.DisplayName
	}
	if primary.TrustScore == 0 {
		primary.TrustScore = fallback.TrustScore
	}
	if primary.TotalReviews == 0 {
		primary.TotalReviews = fallback.TotalReviews
	}
	if primary.AverageRating == 0 {
		primary.AverageRating = fallback.AverageRating
	}
	return primary
}

// nextData mirrors the slice of the __NEXT_DATA__ JSON we care about
type nextData struct {
	Props struct {
		PageProps struct {
			Reviews      []nextDataReview `json:"reviews"`
			BusinessUnit struct {
				DisplayName     string  `json:"displayName"`
				TrustScore      float64 `json:"trustScore"`
				NumberOfReviews int     `json:"numberOfReviews"`
				Stars           float64 `json:"stars"`
				Reviews         struct {
					Reviews []nextDataReview `json:"reviews"`
				} `json:"reviews"`
			} `json:"businessUnit"`
		} `json:"pageProps"`
	} `json:"props"`
}

type nextDataReview struct {
	ID       string      `json:"id"`
	ReviewID string      `json:"reviewId"`
	URL      string      `json:"url"`
	Title    string      `json:"title"`
	Text     string      `json:"text"`
	Rating   json.Number `json:"rating"`
	Dates    struct {
		PublishedDate string `json:"publishedDate"`
	} `json:"dates"`
	Consumer struct {
		DisplayName string `json:"displayName"`
		CountryCode string `json:"countryCode"`
	} `json:"consumer"`
}

// parseNextData extracts reviews and business info from the __NEXT_DATA__
// script tag. Returns false when the tag is absent or unusable.
func (p *Parser) parseNextData(doc *goquery.Document, pageURL string) (*PageData, bool) {
	script := doc.Find("script#__NEXT_DATA__").First()
	if script.Length() == 0 {
		return nil, false
	}

	var data nextData
	if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
		log.Printf("Warning: Failed to decode __NEXT_DATA__ on %s: %v\n", pageURL, err)
		return nil, false
	}

	pageProps := data.Props.PageProps

	// Reviews live at two alternative paths depending on the page variant
	rawReviews := pageProps.Reviews
	if len(rawReviews) == 0 {
		rawReviews = pageProps.BusinessUnit.Reviews.Reviews
	}

	page := &PageData{}
	page.Business = models.BusinessInfo{
		DisplayName:   pageProps.BusinessUnit.DisplayName,
		TrustScore:    pageProps.BusinessUnit.TrustScore,
		TotalReviews:  pageProps.BusinessUnit.NumberOfReviews,
		AverageRating: pageProps.BusinessUnit.Stars,
	}

	for _, r := range rawReviews {
		review, err := p.buildReview(r, pageURL)
		if err != nil {
			log.Printf("Warning: Review skipped on %s: %v\n", pageURL, err)
			page.Dropped++
			continue
		}
		page.Reviews = append(page.Reviews, review)
	}

	return page, true
}

// buildReview validates a raw candidate and normalizes its fields
func (p *Parser) buildReview(r nextDataReview, pageURL string) (models.Review, error) {
	rating, err := parseRating(r.Rating.String())
	if err != nil {
		return models.Review{}, fmt.Errorf("unresolvable rating %q", r.Rating.String())
	}

	reviewURL := reviewURLFromCandidate(r, pageURL)
	if reviewURL == "" {
		return models.Review{}, fmt.Errorf("no resolvable review URL")
	}

	location := strings.TrimSpace(r.Consumer.CountryCode)
	if location == "" {
		location = "unknown"
	}

	return models.Review{
		Date:     normalizeDate(r.Dates.PublishedDate),
		Author:   strings.TrimSpace(r.Consumer.DisplayName),
		Body:     strings.TrimSpace(r.Text),
		Heading:  strings.TrimSpace(r.Title),
		Rating:   rating,
		Location: location,
		URL:      reviewURL,
	}, nil
}

// reviewURLFromCandidate builds the canonical review URL, preferring the
// review id. A relative URL from the data is resolved against the page URL;
// anything that does not end up absolute is rejected.
func reviewURLFromCandidate(r nextDataReview, pageURL string) string {
	id := r.ID
	if id == "" {
		id = r.ReviewID
	}
	if id != "" {
		return reviewURLPrefix + id
	}
	return absoluteURL(r.URL, pageURL)
}

// absoluteURL resolves href against base and returns "" unless the result
// is an absolute URL
func absoluteURL(href, base string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return ""
	}
	return baseURL.ResolveReference(u).String()
}

// parseRating parses a rating value and checks it falls in 1..5
func parseRating(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("empty rating")
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rating %q", text)
	}
	rating := int(value)
	if float64(rating) != value || rating < 1 || rating > 5 {
		return 0, fmt.Errorf("rating %v out of range", value)
	}
	return rating, nil
}

// dateFormats are tried in order when normalizing review dates
var dateFormats = []string{
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02.01.2006",
}

// normalizeDate converts a date value to YYYY-MM-DD. An unparseable value is
// returned as-is rather than failing the whole review.
func normalizeDate(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, text); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return text
}

// --- DOM fallback ---

// extractFunc is one strategy for pulling a field out of a review card
type extractFunc func(s *goquery.Selection) string

// attrText returns a strategy reading an attribute from the first match
func attrText(selector, attr string) extractFunc {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.Find(selector).First().AttrOr(attr, ""))
	}
}

// nodeText returns a strategy reading the text of the first match
func nodeText(selector string) extractFunc {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.Find(selector).First().Text())
	}
}

// firstNonEmpty tries strategies in order and returns the first hit
func firstNonEmpty(s *goquery.Selection, strategies []extractFunc) string {
	for _, strategy := range strategies {
		if value := strategy(s); value != "" {
			return value
		}
	}
	return ""
}

var (
	headingStrategies = []extractFunc{
		nodeText("h2[data-service-review-title-typography]"),
		nodeText("a[data-review-title-typography]"),
		nodeText("h2"),
	}
	bodyStrategies = []extractFunc{
		nodeText("p[data-service-review-text-typography]"),
		nodeText(".review-content__text"),
		nodeText("p"),
	}
	authorStrategies = []extractFunc{
		nodeText("[data-consumer-name-typography]"),
		nodeText("span.consumer-name"),
		nodeText("aside a[name='consumer-profile'] span"),
	}
	locationStrategies = []extractFunc{
		nodeText("[data-consumer-country-typography]"),
		nodeText("div[class*='country'] span"),
	}
	dateStrategies = []extractFunc{
		attrText("time[datetime]", "datetime"),
		nodeText("time"),
		nodeText("[data-service-review-date-time-ago]"),
	}
	urlStrategies = []extractFunc{
		attrText("a[data-review-title-typography]", "href"),
		attrText("a[href*='/reviews/']", "href"),
	}
	ratingStrategies = []extractFunc{
		attrText("[data-service-review-rating]", "data-service-review-rating"),
		attrText("div.star-rating img", "alt"),
		attrText("img[alt*='star']", "alt"),
	}
)

// reviewCardSelectors locate individual review containers
var reviewCardSelectors = []string{
	"article[data-service-review-card-paper]",
	"div.review-card",
	"article.review",
}

// ratedRe pulls the star value out of alt text like "Rated 4 out of 5 stars"
var ratedRe = regexp.MustCompile(`[Rr]ated\s+(\d)`)

// parseReviewCards extracts reviews by walking the visible markup.
// Extraction is by structural position and attributes, so minor markup
// variation does not break it.
func (p *Parser) parseReviewCards(doc *goquery.Document, pageURL string) *PageData {
	page := &PageData{
		Business: p.extractBusinessFragment(doc),
	}

	for _, selector := range reviewCardSelectors {
		cards := doc.Find(selector)
		if cards.Length() == 0 {
			continue
		}
		cards.Each(func(i int, s *goquery.Selection) {
			review, err := p.extractCard(s, pageURL)
			if err != nil {
				log.Printf("Warning: Review skipped on %s: %v\n", pageURL, err)
				page.Dropped++
				return
			}
			page.Reviews = append(page.Reviews, review)
		})
		break
	}

	return page
}

// extractCard pulls one review out of a card element
func (p *Parser) extractCard(s *goquery.Selection, pageURL string) (models.Review, error) {
	ratingText := firstNonEmpty(s, ratingStrategies)
	if matches := ratedRe.FindStringSubmatch(ratingText); len(matches) > 1 {
		ratingText = matches[1]
	}
	rating, err := parseRating(ratingText)
	if err != nil {
		return models.Review{}, fmt.Errorf("unresolvable rating %q", ratingText)
	}

	reviewURL := absoluteURL(firstNonEmpty(s, urlStrategies), pageURL)
	if reviewURL == "" {
		return models.Review{}, fmt.Errorf("no resolvable review URL")
	}

	location := firstNonEmpty(s, locationStrategies)
	if location == "" {
		location = "unknown"
	}

	return models.Review{
		Date:     normalizeDate(firstNonEmpty(s, dateStrategies)),
		Author:   firstNonEmpty(s, authorStrategies),
		Body:     firstNonEmpty(s, bodyStrategies),
		Heading:  firstNonEmpty(s, headingStrategies),
		Rating:   rating,
		Location: location,
		URL:      reviewURL,
	}, nil
}

var (
	trustScoreRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:/|out of)?`)
	reviewsRe    = regexp.MustCompile(`([\d,]+)\s+(?:total\s+)?reviews?`)
)

// extractBusinessFragment probes the page header for business-level markup.
// Any field it cannot find stays zero so the aggregator merge never
// overwrites earlier data with blanks.
func (p *Parser) extractBusinessFragment(doc *goquery.Document) models.BusinessInfo {
	info := models.BusinessInfo{}

	info.DisplayName = strings.TrimSpace(doc.Find("h1 span.title_displayName, h1[class*='title'] span").First().Text())

	scoreText := strings.TrimSpace(doc.Find("[data-rating-typography], span.header_trustscore, div[class*='trustScore']").First().Text())
	if matches := trustScoreRe.FindStringSubmatch(scoreText); len(matches) > 1 {
		if score, err := strconv.ParseFloat(strings.ReplaceAll(matches[1], ",", "."), 64); err == nil && score >= 0 && score <= 5 {
			info.TrustScore = score
		}
	}

	countText := strings.ToLower(doc.Find("[data-reviews-count-typography], span.header_reviewcount, p[class*='reviewsAndRating']").First().Text())
	if matches := reviewsRe.FindStringSubmatch(countText); len(matches) > 1 {
		if count, err := strconv.Atoi(strings.ReplaceAll(matches[1], ",", "")); err == nil {
			info.TotalReviews = count
		}
	}

	return info
}
