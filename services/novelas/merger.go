package novelas

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"revius/models"
	"revius/utils/similarity"
)

// MergeStats summarizes one merge cycle.
type MergeStats struct {
	Added   int
	Updated int
	Total   int
}

// Merger reconciles scraped records into the persisted catalog. The whole
// load-merge-save cycle runs under a process-level mutex; the catalog file
// has no other writers.
type Merger struct {
	store CatalogStore
	mu    sync.Mutex
}

// NewMerger builds a merger over the given store.
func NewMerger(store CatalogStore) *Merger {
	return &Merger{store: store}
}

// Merge upserts records by normalized-title key. New keys are inserted;
// existing records only gain values for fields that were empty, so a merge
// never regresses data. Genres are unioned instead, capped at five with the
// existing order preserved.
func (m *Merger) Merge(records []models.NovelaRecord) (MergeStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	catalog, err := m.store.Load()
	if err != nil {
		return MergeStats{}, err
	}

	byKey := make(map[string]int, len(catalog.Novelas))
	for i, rec := range catalog.Novelas {
		byKey[similarity.NormalizeKey(rec.Title)] = i
	}

	now := time.Now().UTC()
	var stats MergeStats
	for _, incoming := range records {
		key := similarity.NormalizeKey(incoming.Title)
		idx, exists := byKey[key]
		if !exists {
			incoming.CreatedAt = now
			incoming.UpdatedAt = now
			catalog.Novelas = append(catalog.Novelas, incoming)
			byKey[key] = len(catalog.Novelas) - 1
			stats.Added++
			continue
		}
		if fillEmpty(&catalog.Novelas[idx], incoming) {
			catalog.Novelas[idx].UpdatedAt = now
			stats.Updated++
		}
	}

	catalog.Metadata = computeMetadata(catalog.Novelas, now)
	stats.Total = len(catalog.Novelas)

	if err := m.store.Save(catalog); err != nil {
		return MergeStats{}, fmt.Errorf("save merged catalog: %w", err)
	}
	return stats, nil
}

// fillEmpty copies incoming values into fields the existing record lacks.
// Non-empty existing fields are never overwritten. Returns whether anything
// changed.
func fillEmpty(existing *models.NovelaRecord, incoming models.NovelaRecord) bool {
	changed := false
	setStr := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}

	setStr(&existing.Country, incoming.Country)
	setStr(&existing.Broadcaster, incoming.Broadcaster)
	setStr(&existing.Synopsis, incoming.Synopsis)
	setStr(&existing.Director, incoming.Director)
	setStr(&existing.Author, incoming.Author)
	setStr(&existing.WikipediaURL, incoming.WikipediaURL)
	setStr(&existing.ImageURL, incoming.ImageURL)

	if existing.Year.Start == 0 && incoming.Year.Start != 0 {
		existing.Year = incoming.Year
		changed = true
	}
	if existing.Episodes == 0 && incoming.Episodes != 0 {
		existing.Episodes = incoming.Episodes
		changed = true
	}
	if len(existing.Cast) == 0 && len(incoming.Cast) > 0 {
		existing.Cast = incoming.Cast
		changed = true
	}
	if merged, grew := unionGenres(existing.Genre, incoming.Genre); grew {
		existing.Genre = merged
		changed = true
	}
	return changed
}

// unionGenres appends genres the existing set lacks, capped at five.
func unionGenres(existing, incoming []string) ([]string, bool) {
	if len(incoming) == 0 || len(existing) >= maxGenres {
		return existing, false
	}
	seen := make(map[string]struct{}, len(existing))
	for _, g := range existing {
		seen[similarity.NormalizeKey(g)] = struct{}{}
	}
	merged := existing
	grew := false
	for _, g := range incoming {
		key := similarity.NormalizeKey(g)
		if _, dup := seen[key]; dup {
			continue
		}
		merged = append(merged, g)
		seen[key] = struct{}{}
		grew = true
		if len(merged) == maxGenres {
			break
		}
	}
	return merged, grew
}

// computeMetadata rebuilds the aggregate block from the full record set.
func computeMetadata(novelas []models.NovelaRecord, now time.Time) models.CatalogMetadata {
	countries := make(map[string]struct{})
	broadcasters := make(map[string]struct{})
	genres := make(map[string]struct{})

	var stats models.CatalogStatistics
	withEpisodes := 0
	for _, n := range novelas {
		if n.Country != "" {
			countries[n.Country] = struct{}{}
		}
		if n.Broadcaster != "" {
			broadcasters[n.Broadcaster] = struct{}{}
		}
		for _, g := range n.Genre {
			genres[g] = struct{}{}
		}
		if n.Episodes > 0 {
			stats.TotalEpisodes += n.Episodes
			withEpisodes++
		}
		if n.Year.Start > 0 && (stats.YearRange.Start == 0 || n.Year.Start < stats.YearRange.Start) {
			stats.YearRange.Start = n.Year.Start
		}
		for _, y := range []int{n.Year.Start, n.Year.End} {
			if y > stats.YearRange.End {
				stats.YearRange.End = y
			}
		}
	}
	if withEpisodes > 0 {
		stats.AverageEpisodes = float64(stats.TotalEpisodes) / float64(withEpisodes)
	}

	return models.CatalogMetadata{
		LastUpdated:  now,
		TotalNovelas: len(novelas),
		Countries:    sortedKeys(countries),
		Broadcasters: sortedKeys(broadcasters),
		Genres:       sortedKeys(genres),
		Statistics:   stats,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
