package search

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/octobees/icp-finder/internal/entity"
)

const (
	FallbackCompaniesURL = "https://www.linkedin.com/search/results/companies/"
	FallbackPeopleURL    = "https://www.linkedin.com/search/results/people/"
)

var (
	siteOperator = regexp.MustCompile(`site:\S+`)
	orGroup      = regexp.MustCompile(`\([^()]*\bOR\b[^()]*\)`)
	stopwords    = map[string]struct{}{
		"a": {}, "an": {}, "and": {}, "or": {}, "the": {}, "of": {}, "in": {}, "at": {},
		"for": {}, "to": {}, "with": {}, "on": {}, "by": {},
	}
)

// Placeholder is the terminal backend: it never fails and always returns two
// LinkedIn keyword-search links built from the query.
type Placeholder struct{}

func NewPlaceholder() *Placeholder { return &Placeholder{} }

func (p *Placeholder) Name() string { return "placeholder" }

func (p *Placeholder) Search(_ context.Context, query string, _ int) ([]entity.SearchResult, error) {
	return PlaceholderResults(query), nil
}

// PlaceholderResults builds the company and people keyword-search links for query.
func PlaceholderResults(query string) []entity.SearchResult {
	keywords := strings.Join(PlaceholderKeywords(query), " ")
	encoded := url.Values{"keywords": {keywords}}.Encode()

	return []entity.SearchResult{
		{
			Title:   "LinkedIn company search: " + keywords,
			URL:     FallbackCompaniesURL + "?" + encoded,
			Snippet: "No live search results were available. Open this LinkedIn search to continue manually.",
		},
		{
			Title:   "LinkedIn people search: " + keywords,
			URL:     FallbackPeopleURL + "?" + encoded,
			Snippet: "No live search results were available. Open this LinkedIn search to continue manually.",
		},
	}
}

// PlaceholderKeywords returns the first four non-stopword terms of query
// once site: operators, OR groups and quotes are removed.
func PlaceholderKeywords(query string) []string {
	cleaned := siteOperator.ReplaceAllString(query, " ")
	cleaned = orGroup.ReplaceAllString(cleaned, " ")
	cleaned = strings.ReplaceAll(cleaned, `"`, " ")

	keywords := make([]string, 0, 4)
	for _, field := range strings.Fields(cleaned) {
		if _, skip := stopwords[strings.ToLower(field)]; skip {
			continue
		}
		keywords = append(keywords, field)
		if len(keywords) == 4 {
			break
		}
	}
	return keywords
}
