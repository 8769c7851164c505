package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/octobees/icp-finder/internal/entity"
)

const defaultSerpAPIEndpoint = "https://serpapi.com/search"

// SerpAPIOption configures a SerpAPI backend.
type SerpAPIOption func(*SerpAPI)

// WithSerpAPIEndpoint overrides the SerpAPI endpoint.
func WithSerpAPIEndpoint(endpoint string) SerpAPIOption {
	return func(s *SerpAPI) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			s.endpoint = trimmed
		}
	}
}

// WithSerpAPIClient overrides the HTTP client.
func WithSerpAPIClient(client *http.Client) SerpAPIOption {
	return func(s *SerpAPI) {
		if client != nil {
			s.client = client
		}
	}
}

// SerpAPI queries SerpAPI's Google engine. It is the primary key-based backend.
type SerpAPI struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

type serpAPIResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

func NewSerpAPI(apiKey string, opts ...SerpAPIOption) (*SerpAPI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("serpapi: api key is required")
	}
	s := &SerpAPI{
		apiKey:   apiKey,
		endpoint: defaultSerpAPIEndpoint,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SerpAPI) Name() string { return "serpapi" }

func (s *SerpAPI) Search(ctx context.Context, query string, limit int) ([]entity.SearchResult, error) {
	num := limit
	if num <= 0 || num > 100 {
		num = 100
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", s.apiKey)
	params.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi: unexpected status %d", resp.StatusCode)
	}

	var payload serpAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("serpapi: decode response: %w", err)
	}
	if payload.Error != "" && len(payload.OrganicResults) == 0 {
		// "Google hasn't returned any results" arrives as an error string.
		return nil, nil
	}

	results := make([]entity.SearchResult, 0, len(payload.OrganicResults))
	for _, item := range payload.OrganicResults {
		results = append(results, entity.SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
