package finder

import (
	"sync"

	"github.com/octobees/icp-finder/internal/entity"
)

// Accumulator collects results across turns of a session, deduplicated by
// canonical URL in first-seen order. It is safe for concurrent use.
type Accumulator struct {
	mu      sync.Mutex
	results []entity.SearchResult
	seen    map[string]struct{}
}

func NewAccumulator(seed ...entity.SearchResult) *Accumulator {
	a := &Accumulator{seen: make(map[string]struct{})}
	a.Add(seed...)
	return a
}

// Add appends results not seen before and returns how many were new.
func (a *Accumulator) Add(results ...entity.SearchResult) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	added := 0
	for _, r := range results {
		key := CanonicalKey(r.URL)
		if _, dup := a.seen[key]; dup {
			continue
		}
		a.seen[key] = struct{}{}
		a.results = append(a.results, r)
		added++
	}
	return added
}

// Results returns a copy of everything accumulated so far.
func (a *Accumulator) Results() []entity.SearchResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]entity.SearchResult(nil), a.results...)
}

func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}

func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = nil
	a.seen = make(map[string]struct{})
}
