package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/logger"
	"github.com/octobees/icp-finder/internal/metrics"
)

const defaultCallTimeout = 15 * time.Second

// Option configures a Ladder.
type Option func(*Ladder)

// WithTimeout bounds every individual backend call.
func WithTimeout(d time.Duration) Option {
	return func(l *Ladder) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithCache enables result caching for live backends.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(l *Ladder) {
		l.cache = cache
		l.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for backend outcomes.
func WithLogger(log *zap.Logger) Option {
	return func(l *Ladder) {
		l.logger = logger.OrNop(log)
	}
}

// Ladder tries backends in order; the first one that returns results wins.
// The placeholder backend is always the last rung.
type Ladder struct {
	backends []Backend
	timeout  time.Duration
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewLadder(backends []Backend, opts ...Option) *Ladder {
	rungs := make([]Backend, 0, len(backends)+1)
	for _, b := range backends {
		if b != nil {
			rungs = append(rungs, b)
		}
	}
	if len(rungs) == 0 || !isTerminal(rungs[len(rungs)-1]) {
		rungs = append(rungs, NewPlaceholder())
	}

	l := &Ladder{
		backends: rungs,
		timeout:  defaultCallTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Backends returns the backend names in the order they are tried.
func (l *Ladder) Backends() []string {
	names := make([]string, len(l.backends))
	for i, b := range l.backends {
		names[i] = b.Name()
	}
	return names
}

// Search returns the first non-empty backend result list. The error is
// non-nil only when ctx is done.
func (l *Ladder) Search(ctx context.Context, query string, limit int) ([]entity.SearchResult, error) {
	results, _, err := l.SearchTrace(ctx, query, limit)
	return results, err
}

// SearchTrace is Search that also reports every backend outcome in order.
// A cache hit returns no outcomes.
func (l *Ladder) SearchTrace(ctx context.Context, query string, limit int) ([]entity.SearchResult, []Outcome, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	key := cacheKey(query, limit)
	if cached, ok := l.lookup(ctx, key); ok {
		return cached, nil, nil
	}

	outcomes := make([]Outcome, 0, len(l.backends))
	for _, backend := range l.backends {
		if err := ctx.Err(); err != nil {
			return nil, outcomes, err
		}

		outcome := l.try(ctx, backend, query, limit)
		outcomes = append(outcomes, outcome)
		if outcome.Status != StatusOK {
			continue
		}
		if !isTerminal(backend) {
			l.store(ctx, key, outcome.Results)
		}
		return outcome.Results, outcomes, nil
	}
	return nil, outcomes, nil
}

func (l *Ladder) try(ctx context.Context, backend Backend, query string, limit int) Outcome {
	callCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	raw, err := backend.Search(callCtx, query, limit)
	metrics.SearchBackendDuration.WithLabelValues(backend.Name()).Observe(time.Since(start).Seconds())

	outcome := Outcome{Backend: backend.Name()}
	switch {
	case err != nil:
		outcome.Status = StatusFailed
		outcome.Err = err
		l.logger.Warn("search backend failed",
			zap.String("backend", backend.Name()),
			zap.String("query", query),
			zap.Error(err),
		)
	default:
		outcome.Results = normalize(raw, limit)
		outcome.Status = StatusOK
		if len(outcome.Results) == 0 {
			outcome.Status = StatusEmpty
		}
		l.logger.Debug("search backend returned",
			zap.String("backend", backend.Name()),
			zap.String("query", query),
			zap.String("status", string(outcome.Status)),
			zap.Int("results", len(outcome.Results)),
		)
	}

	metrics.SearchBackendRequests.WithLabelValues(backend.Name(), string(outcome.Status)).Inc()
	return outcome
}

func (l *Ladder) lookup(ctx context.Context, key string) ([]entity.SearchResult, bool) {
	if l.cache == nil {
		return nil, false
	}
	results, ok, err := l.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.SearchCache.WithLabelValues("error").Inc()
		l.logger.Warn("search cache lookup failed", zap.Error(err))
		return nil, false
	case !ok || len(results) == 0:
		metrics.SearchCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.SearchCache.WithLabelValues("hit").Inc()
	return results, true
}

func (l *Ladder) store(ctx context.Context, key string, results []entity.SearchResult) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Set(ctx, key, results, l.cacheTTL); err != nil {
		l.logger.Warn("search cache store failed", zap.Error(err))
	}
}

// normalize cleans URLs, drops records without one and caps the list at limit.
func normalize(raw []entity.SearchResult, limit int) []entity.SearchResult {
	results := make([]entity.SearchResult, 0, len(raw))
	for _, r := range raw {
		r.URL = CleanURL(r.URL)
		if r.URL == "" {
			continue
		}
		r.Title = collapseSpace(r.Title)
		r.Snippet = collapseSpace(r.Snippet)
		results = append(results, r)
		if len(results) == limit {
			break
		}
	}
	return results
}

func isTerminal(b Backend) bool {
	_, ok := b.(*Placeholder)
	return ok
}
