package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/octobees/icp-finder/internal/entity"
)

// GoogleCSE queries a Google Programmable Search Engine.
type GoogleCSE struct {
	service  *customsearch.Service
	engineID string
}

// NewGoogleCSE builds the backend. Extra client options are appended after the API key,
// which lets callers point the service at a different endpoint.
func NewGoogleCSE(ctx context.Context, apiKey, engineID string, opts ...option.ClientOption) (*GoogleCSE, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(engineID) == "" {
		return nil, errors.New("google cse: api key and engine id are required")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("google cse: create service: %w", err)
	}

	return &GoogleCSE{service: service, engineID: engineID}, nil
}

func (g *GoogleCSE) Name() string { return "google_cse" }

func (g *GoogleCSE) Search(ctx context.Context, query string, limit int) ([]entity.SearchResult, error) {
	num := int64(limit)
	if num <= 0 || num > 10 {
		num = 10
	}

	resp, err := g.service.Cse.List().Cx(g.engineID).Q(query).Num(num).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google cse: %w", err)
	}

	results := make([]entity.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, entity.SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
