package search

import (
	"context"

	"github.com/octobees/icp-finder/internal/entity"
)

// Backend is one web-search provider in the fallback ladder.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]entity.SearchResult, error)
}

// Status classifies a single backend call.
type Status string

const (
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Outcome is the explicit result of trying one backend.
type Outcome struct {
	Backend string
	Status  Status
	Results []entity.SearchResult
	Err     error
}

const (
	defaultLimit = 12
	userAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
)
