// Package bootstrap assembles the search pipeline from configuration. Both the
// HTTP API and the terminal client build their finder here.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/octobees/icp-finder/internal/classifier"
	"github.com/octobees/icp-finder/internal/config"
	"github.com/octobees/icp-finder/internal/finder"
	"github.com/octobees/icp-finder/internal/logger"
	"github.com/octobees/icp-finder/internal/outreach"
	"github.com/octobees/icp-finder/internal/search"
	"github.com/octobees/icp-finder/internal/service"
)

// Pipeline holds the assembled search components.
type Pipeline struct {
	Ladder  *search.Ladder
	Prompt  *service.PromptService
	Planner *finder.Planner
	Finder  *finder.Finder
	Drafter *outreach.Drafter
}

// Backends returns the configured search backends in ladder order. Key-based
// backends are included only when their credentials are present.
func Backends(ctx context.Context, cfg *config.Config) ([]search.Backend, error) {
	var backends []search.Backend

	if cfg.SerpAPIKey != "" {
		serp, err := search.NewSerpAPI(cfg.SerpAPIKey, search.WithSerpAPIEndpoint(cfg.SerpAPIURL))
		if err != nil {
			return nil, fmt.Errorf("serpapi backend: %w", err)
		}
		backends = append(backends, serp)
	}

	if cfg.GoogleAPIKey != "" && cfg.GoogleCSEID != "" {
		cse, err := search.NewGoogleCSE(ctx, cfg.GoogleAPIKey, cfg.GoogleCSEID)
		if err != nil {
			return nil, fmt.Errorf("google cse backend: %w", err)
		}
		backends = append(backends, cse)
	}

	ddgOpts := []search.DuckDuckGoOption{search.WithDuckDuckGoURL(cfg.DuckDuckGoURL)}
	if limiter := newLimiter(cfg.DuckDuckGoRate); limiter != nil {
		ddgOpts = append(ddgOpts, search.WithDuckDuckGoLimiter(limiter))
	}
	backends = append(backends, search.NewDuckDuckGo(ddgOpts...))

	return append(backends, search.NewPlaceholder()), nil
}

// Build wires backends, intent parser, planner and finder. cache may be nil.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger, cache search.Cache) (*Pipeline, error) {
	log = logger.OrNop(log)

	backends, err := Backends(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ladderOpts := []search.Option{search.WithTimeout(cfg.SearchTimeout), search.WithLogger(log)}
	if cache != nil {
		ladderOpts = append(ladderOpts, search.WithCache(cache, cfg.SearchCacheTTL))
	}
	ladder := search.NewLadder(backends, ladderOpts...)

	promptOpts := []service.PromptOption{service.WithPromptLogger(log)}
	if cfg.ClassifierEnabled() {
		llm, err := classifier.NewLLM(cfg.ClassifierBaseURL, cfg.ClassifierToken, cfg.ClassifierModel)
		if err != nil {
			return nil, err
		}
		promptOpts = append(promptOpts, service.WithClassifier(llm, cfg.ClassifierTimeout))
	}
	prompt := service.NewPromptService(promptOpts...)

	policy, err := finder.ParsePolicy(cfg.TierPolicy)
	if err != nil {
		return nil, err
	}
	planner := finder.NewPlanner(ladder, finder.WithPolicy(policy), finder.WithPlannerLogger(log))

	f := finder.New(prompt, planner,
		finder.WithResultCap(cfg.ResultCap),
		finder.WithPerCompanyCap(cfg.PerCompanyCap),
		finder.WithLogger(log),
	)

	log.Info("search pipeline ready",
		zap.Strings("backends", ladder.Backends()),
		zap.String("tier_policy", string(policy)),
		zap.Bool("classifier", cfg.ClassifierEnabled()),
		zap.Bool("cache", cache != nil),
	)

	return &Pipeline{
		Ladder:  ladder,
		Prompt:  prompt,
		Planner: planner,
		Finder:  f,
		Drafter: outreach.NewDrafter(outreach.WithSender(cfg.OutreachSender)),
	}, nil
}

func newLimiter(cfg config.RateLimitConfig) *rate.Limiter {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return nil
	}
	every := cfg.Interval / time.Duration(cfg.Requests)
	if every <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(every), 1)
}
