package match

import (
	"context"

	"revius/models"
)

// CatalogSearcher is the pluggable lookup over the locally maintained
// novela catalog. The storage backend (file, database, service) is the
// implementer's business; the matcher only needs search.
type CatalogSearcher interface {
	SearchNovelas(ctx context.Context, title string, year int) ([]models.NovelaRecord, error)
}

type novelaSearcher struct {
	catalog CatalogSearcher
}

// NewNovelaSearcher adapts a local novela catalog into a match source.
func NewNovelaSearcher(catalog CatalogSearcher) Searcher {
	return &novelaSearcher{catalog: catalog}
}

func (c *novelaSearcher) Name() string { return models.SourceNovela }

func (c *novelaSearcher) Search(ctx context.Context, title string, year int) ([]models.CandidateMatch, error) {
	records, err := c.catalog.SearchNovelas(ctx, title, year)
	if err != nil {
		return nil, err
	}

	out := make([]models.CandidateMatch, 0, len(records))
	for _, r := range records {
		out = append(out, models.CandidateMatch{
			Title:       r.Title,
			Year:        r.Year.Start,
			ExternalID:  r.ID,
			MediaType:   models.MediaTypeNovela,
			SourceName:  models.SourceNovela,
			PosterURL:   r.ImageURL,
			Synopsis:    r.Synopsis,
			ExternalURL: r.WikipediaURL,
		})
	}
	return out, nil
}
