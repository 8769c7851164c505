package finder

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/metrics"
)

const (
	// MaxFanoutCompanies caps how many companies get a people sub-search.
	MaxFanoutCompanies = 6
	maxFanoutWorkers   = 6
)

// FindPeopleAtCompanies searches for icp profiles at each of the first
// MaxFanoutCompanies companies. Fallback links are skipped. A failing
// sub-search contributes nothing and never aborts the others.
func (p *Planner) FindPeopleAtCompanies(ctx context.Context, companies []entity.SearchResult, icp string, perCompany int) []entity.SearchResult {
	if perCompany <= 0 {
		return nil
	}
	if len(companies) > MaxFanoutCompanies {
		companies = companies[:MaxFanoutCompanies]
	}

	eligible := make([]entity.SearchResult, 0, len(companies))
	for _, c := range companies {
		if IsFallbackLink(c.URL) {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return nil
	}

	// each task owns exactly one slot
	slots := make([][]entity.SearchResult, len(eligible))
	var wg sync.WaitGroup

	pool, err := ants.NewPool(min(len(eligible), maxFanoutWorkers))
	if err != nil {
		p.logger.Warn("fan-out pool unavailable, running sequentially", zap.Error(err))
		for i, company := range eligible {
			slots[i] = p.peopleAt(ctx, company, icp, perCompany)
		}
		return mergeSlots(slots)
	}
	defer pool.Release()

	for i, company := range eligible {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			slots[i] = p.peopleAt(ctx, company, icp, perCompany)
		}
		if err := pool.Submit(task); err != nil {
			p.logger.Warn("fan-out submit failed, running inline", zap.Error(err))
			task()
		}
	}
	wg.Wait()

	return mergeSlots(slots)
}

func (p *Planner) peopleAt(ctx context.Context, company entity.SearchResult, icp string, perCompany int) (found []entity.SearchResult) {
	name := company.Company
	if name == "" {
		name = ParseCompanyName(company.Title)
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("company sub-search panicked",
				zap.String("company", name),
				zap.String("panic", fmt.Sprint(r)),
			)
			metrics.FanoutFailures.Inc()
			found = nil
		}
	}()

	if name == "" {
		return nil
	}

	query := joinTerms("site:"+profileSite, `"`+name+`"`, quote(icp))
	results, err := p.searcher.Search(ctx, query, 2*perCompany)
	if err != nil {
		p.logger.Warn("company sub-search failed",
			zap.String("company", name),
			zap.String("query", query),
			zap.Error(err),
		)
		metrics.FanoutFailures.Inc()
		return nil
	}

	for _, r := range results {
		if !IsProfile(r.URL) {
			continue
		}
		r.Company = name
		found = append(found, r)
		if len(found) == perCompany {
			break
		}
	}
	return found
}

func mergeSlots(slots [][]entity.SearchResult) []entity.SearchResult {
	var merged []entity.SearchResult
	for _, s := range slots {
		merged = append(merged, s...)
	}
	return Dedupe(merged)
}
