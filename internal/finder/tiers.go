package finder

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/logger"
)

// Searcher is the search contract the planner consumes. An error means the
// query produced nothing usable; the planner moves on to the next tier.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]entity.SearchResult, error)
}

// Kind selects which result shape a tier list targets.
type Kind int

const (
	KindCompany Kind = iota
	KindPerson
)

func (k Kind) String() string {
	if k == KindPerson {
		return "person"
	}
	return "company"
}

func (k Kind) site() string {
	if k == KindPerson {
		return profileSite
	}
	return companySite
}

// matches reports whether a result is a real page of this kind. Keyword-search
// links are never matches, so they cannot end tier iteration.
func (k Kind) matches(rawURL string) bool {
	if IsFallbackLink(rawURL) {
		return false
	}
	if k == KindPerson {
		return IsProfile(rawURL)
	}
	return IsCompany(rawURL)
}

// Policy decides what happens after a tier yields matches.
type Policy string

const (
	// PolicyFirstMatch stops at the first tier with at least one match.
	PolicyFirstMatch Policy = "first-match"
	// PolicyDrain keeps relaxing tiers until the cap is met or tiers run out.
	PolicyDrain Policy = "drain"
)

func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case PolicyFirstMatch, "":
		return PolicyFirstMatch, nil
	case PolicyDrain:
		return PolicyDrain, nil
	}
	return "", fmt.Errorf("unknown tier policy %q", value)
}

// Planner runs tiered queries against a Searcher.
type Planner struct {
	searcher Searcher
	policy   Policy
	logger   *zap.Logger
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

func WithPolicy(policy Policy) PlannerOption {
	return func(p *Planner) {
		if policy != "" {
			p.policy = policy
		}
	}
}

func WithPlannerLogger(log *zap.Logger) PlannerOption {
	return func(p *Planner) {
		p.logger = logger.OrNop(log)
	}
}

func NewPlanner(searcher Searcher, opts ...PlannerOption) *Planner {
	p := &Planner{
		searcher: searcher,
		policy:   PolicyFirstMatch,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) Policy() Policy { return p.policy }

// FindCompanies returns up to limit deduplicated company pages for the intent terms.
func (p *Planner) FindCompanies(ctx context.Context, icp, industry, region string, extra []string, limit int) ([]entity.SearchResult, error) {
	return p.find(ctx, KindCompany, Tiers(KindCompany, icp, industry, region, extra), limit)
}

// FindPeople returns up to limit deduplicated member profiles for the intent terms.
func (p *Planner) FindPeople(ctx context.Context, icp, industry, region string, extra []string, limit int) ([]entity.SearchResult, error) {
	return p.find(ctx, KindPerson, Tiers(KindPerson, icp, industry, region, extra), limit)
}

func (p *Planner) find(ctx context.Context, kind Kind, queries []string, limit int) ([]entity.SearchResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	var hits []entity.SearchResult
	seen := make(map[string]struct{})
	for tier, query := range queries {
		if len(seen) >= limit {
			break
		}

		results, err := p.searcher.Search(ctx, query, 2*(limit-len(seen)))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.logger.Warn("tier search failed",
				zap.Stringer("kind", kind),
				zap.Int("tier", tier+1),
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}

		matched := 0
		for _, r := range results {
			if !kind.matches(r.URL) {
				continue
			}
			if kind == KindCompany {
				r.Company = CompanyFromURL(r.URL)
			}
			hits = append(hits, r)
			seen[CanonicalKey(r.URL)] = struct{}{}
			matched++
		}
		p.logger.Debug("tier searched",
			zap.Stringer("kind", kind),
			zap.Int("tier", tier+1),
			zap.String("query", query),
			zap.Int("matched", matched),
		)

		if matched > 0 && p.policy == PolicyFirstMatch {
			break
		}
	}

	hits = Dedupe(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// AgencyTerms narrows company tiers to service providers.
const AgencyTerms = "(agency OR consultancy OR studio)"

// Tiers builds the ordered query variants for kind, most specific first.
// Company variants always carry AgencyTerms. Duplicate variants are dropped.
func Tiers(kind Kind, icp, industry, region string, extra []string) []string {
	site := "site:" + kind.site()
	role, ind, reg := quote(icp), quote(industry), quote(region)
	if kind == KindCompany {
		role = joinTerms(AgencyTerms, role)
	}

	var extras []string
	for _, kw := range extra {
		if q := quote(kw); q != "" {
			extras = append(extras, q)
		}
	}

	var candidates []string
	if len(extras) > 0 {
		candidates = append(candidates, joinTerms(append([]string{site, role, ind, reg}, extras...)...))
	}
	candidates = append(candidates,
		joinTerms(site, role, ind, reg),
		joinTerms(site, role, ind),
		joinTerms(site, role, reg),
		joinTerms(role, reg),
	)

	tiers := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		tiers = append(tiers, c)
	}
	return tiers
}

// quote wraps multi-word terms in double quotes.
func quote(term string) string {
	term = strings.TrimSpace(strings.ReplaceAll(term, `"`, ""))
	if strings.ContainsAny(term, " \t") {
		return `"` + strings.Join(strings.Fields(term), " ") + `"`
	}
	return term
}

func joinTerms(terms ...string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
