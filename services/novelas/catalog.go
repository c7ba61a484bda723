package novelas

import (
	"context"
	"sort"
	"strings"

	"revius/models"
	"revius/utils/similarity"
)

// catalogSearchFloor is deliberately loose; the matcher applies the real
// per-source threshold after ranking.
const catalogSearchFloor = 0.4

const maxSearchResults = 10

// CatalogService exposes read access over the persisted catalog for the
// matcher and the API layer.
type CatalogService struct {
	store CatalogStore
}

// NewCatalogService builds a read service over the given store.
func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

// SearchNovelas returns catalog records plausibly matching the title, best
// first. The year narrows but never excludes on its own here; the caller's
// ranking applies the tolerance gate.
func (s *CatalogService) SearchNovelas(ctx context.Context, title string, year int) ([]models.NovelaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	catalog, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	queryKey := similarity.NormalizeKey(title)
	type scored struct {
		rec   models.NovelaRecord
		score float64
	}
	var hits []scored
	for _, rec := range catalog.Novelas {
		score := similarity.Similarity(title, rec.Title)
		if score < catalogSearchFloor && !strings.Contains(similarity.NormalizeKey(rec.Title), queryKey) {
			continue
		}
		hits = append(hits, scored{rec: rec, score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > maxSearchResults {
		hits = hits[:maxSearchResults]
	}

	out := make([]models.NovelaRecord, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.rec)
	}
	return out, nil
}

// Query filters the catalog for the API layer: substring match on the title
// and an optional exact country filter.
func (s *CatalogService) Query(ctx context.Context, q, country string) ([]models.NovelaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	catalog, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	queryKey := similarity.NormalizeKey(q)
	countryKey := similarity.NormalizeKey(country)

	out := make([]models.NovelaRecord, 0)
	for _, rec := range catalog.Novelas {
		if queryKey != "" && !strings.Contains(similarity.NormalizeKey(rec.Title), queryKey) {
			continue
		}
		if countryKey != "" && similarity.NormalizeKey(rec.Country) != countryKey {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Metadata returns the catalog's aggregate block.
func (s *CatalogService) Metadata(ctx context.Context) (models.CatalogMetadata, error) {
	if err := ctx.Err(); err != nil {
		return models.CatalogMetadata{}, err
	}
	catalog, err := s.store.Load()
	if err != nil {
		return models.CatalogMetadata{}, err
	}
	return catalog.Metadata, nil
}
