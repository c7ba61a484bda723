package novelas

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"revius/models"
)

func seededCatalogService(t *testing.T) *CatalogService {
	t.Helper()
	store := NewFileCatalogStoreFS(afero.NewMemMapFs(), "/data/catalog.json")
	err := store.Save(models.NovelaCatalog{Novelas: []models.NovelaRecord{
		{ID: "1", Title: "Avenida Brasil", Country: "Brazil", Year: models.YearRange{Start: 2012}},
		{ID: "2", Title: "Coração Indomável", Country: "Mexico", Year: models.YearRange{Start: 2013}},
		{ID: "3", Title: "Rubí", Country: "Mexico", Year: models.YearRange{Start: 2004}},
	}})
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return NewCatalogService(store)
}

func TestSearchNovelasFuzzyAndAccentInsensitive(t *testing.T) {
	svc := seededCatalogService(t)

	records, err := svc.SearchNovelas(context.Background(), "Coracao Indomavel", 2013)
	if err != nil {
		t.Fatalf("SearchNovelas failed: %v", err)
	}
	if len(records) == 0 || records[0].Title != "Coração Indomável" {
		t.Fatalf("expected accent-insensitive hit, got %+v", records)
	}
}

func TestSearchNovelasNoPlausibleMatch(t *testing.T) {
	svc := seededCatalogService(t)

	records, err := svc.SearchNovelas(context.Background(), "Breaking Bad", 2008)
	if err != nil {
		t.Fatalf("SearchNovelas failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no hits, got %+v", records)
	}
}

func TestQueryBySubstringAndCountry(t *testing.T) {
	svc := seededCatalogService(t)

	records, err := svc.Query(context.Background(), "", "Mexico")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 Mexican records, got %d", len(records))
	}

	records, err = svc.Query(context.Background(), "avenida", "")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Avenida Brasil" {
		t.Errorf("substring query failed: %+v", records)
	}
}
