package finder

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/logger"
	"github.com/octobees/icp-finder/internal/metrics"
)

const (
	DefaultResultCap     = 8
	DefaultPerCompanyCap = 3
)

// ErrInternal marks an unexpected failure inside a search branch.
var ErrInternal = errors.New("finder: internal error")

// IntentParser turns a prompt into a fully populated intent. It never fails.
type IntentParser interface {
	Parse(ctx context.Context, prompt string) entity.ParsedIntent
}

// Result is the consolidated output of one run.
type Result struct {
	Agencies      []entity.SearchResult
	People        []entity.SearchResult
	CompanyPeople []entity.SearchResult
	Intent        entity.ParsedIntent
}

// Empty reports whether no list produced anything.
func (r Result) Empty() bool {
	return len(r.Agencies) == 0 && len(r.People) == 0 && len(r.CompanyPeople) == 0
}

// All returns agencies, people and company people in that order.
func (r Result) All() []entity.SearchResult {
	all := make([]entity.SearchResult, 0, len(r.Agencies)+len(r.People)+len(r.CompanyPeople))
	all = append(all, r.Agencies...)
	all = append(all, r.People...)
	return append(all, r.CompanyPeople...)
}

// Option configures a Finder.
type Option func(*Finder)

func WithResultCap(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.resultCap = n
		}
	}
}

func WithPerCompanyCap(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.perCompany = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(f *Finder) {
		f.logger = logger.OrNop(log)
	}
}

// Finder orchestrates intent parsing, the two search branches and the fan-out.
type Finder struct {
	parser     IntentParser
	planner    *Planner
	resultCap  int
	perCompany int
	logger     *zap.Logger
}

func New(parser IntentParser, planner *Planner, opts ...Option) *Finder {
	f := &Finder{
		parser:     parser,
		planner:    planner,
		resultCap:  DefaultResultCap,
		perCompany: DefaultPerCompanyCap,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run executes one search request. Company and person branches run
// concurrently and are joined before the company to people fan-out.
func (f *Finder) Run(ctx context.Context, prompt string) (Result, error) {
	intent := f.parser.Parse(ctx, prompt)
	metrics.Runs.WithLabelValues(string(intent.SearchType)).Inc()

	result := Result{Intent: intent}
	g, gctx := errgroup.WithContext(ctx)
	if intent.WantsCompanies() {
		g.Go(guard("companies", func() (err error) {
			result.Agencies, err = f.planner.FindCompanies(gctx, intent.ICP, intent.Industry, intent.Region, intent.ExtraKeywords, f.resultCap)
			return err
		}))
	}
	if intent.WantsPeople() {
		g.Go(guard("people", func() (err error) {
			result.People, err = f.planner.FindPeople(gctx, intent.ICP, intent.Industry, intent.Region, intent.ExtraKeywords, f.resultCap)
			return err
		}))
	}
	if err := g.Wait(); err != nil {
		f.logger.Error("search branch failed", zap.String("prompt", prompt), zap.Error(err))
		return Result{Intent: intent}, err
	}

	if len(result.Agencies) > 0 {
		result.CompanyPeople = f.planner.FindPeopleAtCompanies(ctx, result.Agencies, intent.ICP, f.perCompany)
	}

	f.logger.Info("search run finished",
		zap.String("search_type", string(intent.SearchType)),
		zap.Int("agencies", len(result.Agencies)),
		zap.Int("people", len(result.People)),
		zap.Int("company_people", len(result.CompanyPeople)),
	)
	return result, nil
}

// RunSession runs prompt and adds every result to acc. It returns how many
// results were new to the accumulator.
func (f *Finder) RunSession(ctx context.Context, prompt string, acc *Accumulator) (Result, int, error) {
	result, err := f.Run(ctx, prompt)
	if err != nil {
		return result, 0, err
	}
	return result, acc.Add(result.All()...), nil
}

// guard converts a panic in fn into an ErrInternal error.
func guard(branch string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %s branch: %v", ErrInternal, branch, r)
			}
		}()
		return fn()
	}
}
