package finder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/search"
)

const (
	companyTier1 = `site:linkedin.com/company (agency OR consultancy OR studio) founder saas "United States"`
	companyTier2 = `site:linkedin.com/company (agency OR consultancy OR studio) founder saas`
	companyTier3 = `site:linkedin.com/company (agency OR consultancy OR studio) founder "United States"`
	companyTier4 = `(agency OR consultancy OR studio) founder "United States"`
)

func TestTiersOrder(t *testing.T) {
	assert.Equal(t, []string{companyTier1, companyTier2, companyTier3, companyTier4},
		Tiers(KindCompany, "founder", "saas", "United States", nil))

	for _, tier := range Tiers(KindCompany, "cto", "fintech", "Texas", []string{"b2b"}) {
		assert.Contains(t, tier, AgencyTerms)
	}

	people := Tiers(KindPerson, "head growth", "fintech", "Texas", []string{"series a", "b2b"})
	assert.Equal(t, []string{
		`site:linkedin.com/in "head growth" fintech Texas "series a" b2b`,
		`site:linkedin.com/in "head growth" fintech Texas`,
		`site:linkedin.com/in "head growth" fintech`,
		`site:linkedin.com/in "head growth" Texas`,
		`"head growth" Texas`,
	}, people)
}

func TestTiersSkipDuplicates(t *testing.T) {
	tiers := Tiers(KindCompany, "founder", "", "", []string{" "})
	assert.Equal(t, []string{
		"site:linkedin.com/company (agency OR consultancy OR studio) founder",
		"(agency OR consultancy OR studio) founder",
	}, tiers)
}

func TestPlannerFirstMatchShortCircuits(t *testing.T) {
	s := newCannedSearcher()
	s.responses[companyTier1] = []entity.SearchResult{profile("jane")}
	s.responses[companyTier2] = []entity.SearchResult{
		company("acme"),
		{Title: "dup", URL: "https://www.linkedin.com/company/acme?trk=x"},
		{Title: "blog", URL: "https://acme.example/blog"},
	}
	s.responses[companyTier3] = []entity.SearchResult{company("never")}

	p := NewPlanner(s)
	got, err := p.FindCompanies(context.Background(), "founder", "saas", "United States", nil, 4)
	require.NoError(t, err)

	assert.Equal(t, []string{companyTier1, companyTier2}, s.calls())
	assert.Equal(t, []int{8, 8}, s.limits)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].Company)
	assert.Equal(t, "https://www.linkedin.com/company/acme/", got[0].URL)
}

func TestPlannerDrainStopsAtCap(t *testing.T) {
	s := newCannedSearcher()
	s.responses[companyTier1] = []entity.SearchResult{company("a")}
	s.responses[companyTier2] = []entity.SearchResult{company("a"), company("b")}
	s.responses[companyTier3] = []entity.SearchResult{company("c"), company("d")}
	s.responses[companyTier4] = []entity.SearchResult{company("e")}

	p := NewPlanner(s, WithPolicy(PolicyDrain))
	got, err := p.FindCompanies(context.Background(), "founder", "saas", "United States", nil, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{companyTier1, companyTier2, companyTier3}, s.calls())
	assert.Equal(t, []int{6, 4, 2}, s.limits)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Company)
	assert.Equal(t, "B", got[1].Company)
	assert.Equal(t, "C", got[2].Company)
}

func TestPlannerSkipsFailedTier(t *testing.T) {
	s := newCannedSearcher()
	s.errs[companyTier1] = errors.New("upstream down")
	s.responses[companyTier2] = []entity.SearchResult{company("acme")}

	got, err := NewPlanner(s).FindCompanies(context.Background(), "founder", "saas", "United States", nil, 2)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPlannerNoMatchesExhaustsTiers(t *testing.T) {
	s := newCannedSearcher()
	got, err := NewPlanner(s).FindPeople(context.Background(), "founder", "saas", "United States", nil, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, s.calls(), 4)
}

// emptyFirstTier returns nothing for the most specific company tier and real
// pages for every other query.
type emptyFirstTier struct{}

func (emptyFirstTier) Name() string { return "live" }

func (emptyFirstTier) Search(_ context.Context, query string, _ int) ([]entity.SearchResult, error) {
	if query == companyTier1 {
		return nil, nil
	}
	return []entity.SearchResult{company("acme"), company("bright-labs")}, nil
}

func TestPlannerKeywordSearchLinksAreNotMatches(t *testing.T) {
	ladder := search.NewLadder([]search.Backend{emptyFirstTier{}})
	got, err := NewPlanner(ladder).FindCompanies(context.Background(), "founder", "saas", "United States", nil, 8)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "https://www.linkedin.com/company/acme/", got[0].URL)
	assert.Equal(t, "Acme", got[0].Company)
	assert.Equal(t, "Bright Labs", got[1].Company)
	for _, r := range got {
		assert.False(t, IsFallbackLink(r.URL))
	}
}

func TestPlannerPlaceholderOnlyYieldsNothing(t *testing.T) {
	ladder := search.NewLadder(nil)
	got, err := NewPlanner(ladder).FindPeople(context.Background(), "cto", "fintech", "Texas", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPlannerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPlanner(search.NewLadder(nil)).FindCompanies(ctx, "founder", "saas", "Texas", nil, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlannerZeroCap(t *testing.T) {
	s := newCannedSearcher()
	got, err := NewPlanner(s).FindCompanies(context.Background(), "founder", "saas", "Texas", nil, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, s.calls())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("DRAIN")
	require.NoError(t, err)
	assert.Equal(t, PolicyDrain, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFirstMatch, p)

	_, err = ParsePolicy("sometimes")
	assert.Error(t, err)
}
