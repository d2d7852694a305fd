package scrape

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/bizradar/poi-ingest/pkg/models"
)

const (
	// fetchTimeout bounds each page fetch; business sites are slow and
	// the scrape is best-effort.
	fetchTimeout = 6 * time.Second

	// maxMenuLinks caps how many menu candidate links are kept.
	maxMenuLinks = 3
)

// Scraper fetches a business's own website and extracts a short
// description and candidate menu links. Strictly best-effort: every
// failure path returns nil, nothing propagates to the caller.
type Scraper interface {
	Fetch(ctx context.Context, pageURL string) *models.ScrapeResult
}

type scraper struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewScraper creates a page scraper with its own short-timeout client.
func NewScraper(logger *zap.Logger) Scraper {
	return &scraper{
		httpClient: &http.Client{Timeout: fetchTimeout},
		logger:     logger.Named("page-scraper"),
	}
}

var _ Scraper = (*scraper)(nil)

func (s *scraper) Fetch(ctx context.Context, pageURL string) *models.ScrapeResult {
	if !models.HasContact(pageURL) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		s.logger.Debug("Scrape request build failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("Scrape fetch failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("Scrape target returned non-OK status",
			zap.String("url", pageURL), zap.Int("status", resp.StatusCode))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		s.logger.Debug("Scrape parse failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	result := &models.ScrapeResult{
		Description: strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")),
		MenuLinks:   menuLinks(doc, pageURL),
	}
	if result.Description == "" && len(result.MenuLinks) == 0 {
		return nil
	}
	return result
}

// menuLinks collects hrefs containing "menu" (case-insensitive), resolved
// against the page URL, first maxMenuLinks in document order.
func menuLinks(doc *goquery.Document, pageURL string) []string {
	base, _ := url.Parse(pageURL)

	var links []string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href := sel.AttrOr("href", "")
		if !strings.Contains(strings.ToLower(href), "menu") {
			return true
		}
		if base != nil {
			if resolved, err := base.Parse(href); err == nil {
				href = resolved.String()
			}
		}
		links = append(links, href)
		return len(links) < maxMenuLinks
	})
	return links
}
