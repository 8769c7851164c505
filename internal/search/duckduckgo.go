package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/octobees/icp-finder/internal/entity"
)

const defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoOption configures the DuckDuckGo backend.
type DuckDuckGoOption func(*DuckDuckGo)

// WithDuckDuckGoURL overrides the HTML endpoint.
func WithDuckDuckGoURL(endpoint string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			d.endpoint = trimmed
		}
	}
}

// WithDuckDuckGoClient overrides the HTTP client.
func WithDuckDuckGoClient(client *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if client != nil {
			d.client = client
		}
	}
}

// WithDuckDuckGoLimiter throttles outbound requests.
func WithDuckDuckGoLimiter(limiter *rate.Limiter) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.limiter = limiter
	}
}

// DuckDuckGo scrapes the keyless HTML results page.
type DuckDuckGo struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		endpoint: defaultDuckDuckGoURL,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]entity.SearchResult, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("duckduckgo: throttle: %w", err)
		}
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: parse html: %w", err)
	}
	return parseDuckDuckGo(doc, limit), nil
}

func parseDuckDuckGo(doc *goquery.Document, limit int) []entity.SearchResult {
	if limit <= 0 {
		limit = defaultLimit
	}

	var results []entity.SearchResult
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		anchor := s.Find("a.result__a").First()
		href, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		results = append(results, entity.SearchResult{
			Title:   collapseSpace(anchor.Text()),
			URL:     strings.TrimSpace(href),
			Snippet: collapseSpace(s.Find(".result__snippet").First().Text()),
		})
		return len(results) < limit
	})
	return results
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
