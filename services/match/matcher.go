// Package match resolves loosely-specified title/year pairs against
// multiple external catalogs and ranks the resulting candidates.
package match

import (
	"context"
	"log"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"revius/models"
	"revius/utils/similarity"
)

// Searcher describes a pluggable catalog source capable of returning
// candidate matches for a title/year query.
type Searcher interface {
	Name() string
	Search(ctx context.Context, title string, year int) ([]models.CandidateMatch, error)
}

const defaultMaxCandidates = 5

// Matcher fans a query out across all configured sources and returns a
// ranked, deduplicated candidate list.
type Matcher struct {
	searchers []Searcher

	// MaxCandidates caps the ranked result; 0 means the default of 5.
	MaxCandidates int
}

// NewMatcher constructs a matcher over the given sources. Fan-in respects
// models.SourcePriority regardless of the order sources complete in.
func NewMatcher(searchers ...Searcher) *Matcher {
	return &Matcher{searchers: searchers}
}

// Search queries every source concurrently. A source that errors or panics
// contributes an empty candidate list; it never aborts the others.
func (m *Matcher) Search(ctx context.Context, entry models.RawListEntry) []models.CandidateMatch {
	var (
		mu       sync.Mutex
		bySource = make(map[string][]models.CandidateMatch, len(m.searchers))
	)

	p := pool.New().WithMaxGoroutines(len(m.searchers) + 1)
	for _, s := range m.searchers {
		s := s
		p.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[match] %s panicked searching %q: %v", s.Name(), entry.Title, r)
				}
			}()

			candidates, err := s.Search(ctx, entry.Title, entry.Year)
			if err != nil {
				log.Printf("[match] %s search failed for %q: %v", s.Name(), entry.Title, err)
				return
			}

			mu.Lock()
			bySource[s.Name()] = candidates
			mu.Unlock()
		})
	}
	p.Wait()

	// Fan-in in declared priority order so first-occurrence dedup is
	// deterministic no matter which source answered first.
	var merged []models.CandidateMatch
	for _, name := range models.SourcePriority {
		merged = append(merged, bySource[name]...)
	}
	for _, s := range m.searchers {
		if !isPrioritySource(s.Name()) {
			merged = append(merged, bySource[s.Name()]...)
		}
	}

	deduped := dedupCandidates(merged)
	ranked := RankAndFilter(entry, deduped)

	limit := m.MaxCandidates
	if limit <= 0 {
		limit = defaultMaxCandidates
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func isPrioritySource(name string) bool {
	for _, p := range models.SourcePriority {
		if p == name {
			return true
		}
	}
	return false
}

type candidateKey struct {
	title     string
	year      int
	mediaType string
}

// dedupCandidates keeps the first occurrence of each (normalized title,
// year, media type) triple.
func dedupCandidates(candidates []models.CandidateMatch) []models.CandidateMatch {
	seen := make(map[candidateKey]struct{}, len(candidates))
	out := make([]models.CandidateMatch, 0, len(candidates))
	for _, c := range candidates {
		key := candidateKey{
			title:     similarity.NormalizeKey(c.Title),
			year:      c.Year,
			mediaType: c.MediaType,
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
