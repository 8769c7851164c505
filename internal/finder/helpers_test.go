package finder

import (
	"context"
	"sync"

	"github.com/octobees/icp-finder/internal/entity"
)

// cannedSearcher answers by exact query string and records every call.
type cannedSearcher struct {
	mu        sync.Mutex
	responses map[string][]entity.SearchResult
	errs      map[string]error
	panics    map[string]bool
	queries   []string
	limits    []int
}

func newCannedSearcher() *cannedSearcher {
	return &cannedSearcher{
		responses: make(map[string][]entity.SearchResult),
		errs:      make(map[string]error),
		panics:    make(map[string]bool),
	}
}

func (c *cannedSearcher) Search(_ context.Context, query string, limit int) ([]entity.SearchResult, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.limits = append(c.limits, limit)
	results, err, boom := c.responses[query], c.errs[query], c.panics[query]
	c.mu.Unlock()

	if boom {
		panic("searcher exploded")
	}
	return results, err
}

func (c *cannedSearcher) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

func company(slug string) entity.SearchResult {
	return entity.SearchResult{
		Title: slug + " | LinkedIn",
		URL:   "https://www.linkedin.com/company/" + slug + "/",
	}
}

func profile(slug string) entity.SearchResult {
	return entity.SearchResult{
		Title: slug + " - LinkedIn",
		URL:   "https://www.linkedin.com/in/" + slug,
	}
}
