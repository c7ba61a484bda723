package novelas

import (
	"testing"

	"github.com/spf13/afero"

	"revius/models"
)

func newTestMerger(t *testing.T) (*Merger, *FileCatalogStore) {
	t.Helper()
	store := NewFileCatalogStoreFS(afero.NewMemMapFs(), "/data/catalog.json")
	return NewMerger(store), store
}

func TestMergeInsertsNewRecords(t *testing.T) {
	merger, store := newTestMerger(t)

	stats, err := merger.Merge([]models.NovelaRecord{
		{ID: "a1", Title: "Avenida Brasil", Country: "Brazil", Episodes: 179, Year: models.YearRange{Start: 2012}},
		{ID: "b2", Title: "Rubí", Country: "Mexico", Episodes: 115, Year: models.YearRange{Start: 2004}},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if stats.Added != 2 || stats.Updated != 0 || stats.Total != 2 {
		t.Errorf("stats = %+v", stats)
	}

	catalog, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if catalog.Metadata.TotalNovelas != 2 {
		t.Errorf("TotalNovelas = %d", catalog.Metadata.TotalNovelas)
	}
	if len(catalog.Metadata.Countries) != 2 {
		t.Errorf("Countries = %v", catalog.Metadata.Countries)
	}
	if catalog.Metadata.Statistics.TotalEpisodes != 294 {
		t.Errorf("TotalEpisodes = %d", catalog.Metadata.Statistics.TotalEpisodes)
	}
	if catalog.Metadata.Statistics.YearRange.Start != 2004 || catalog.Metadata.Statistics.YearRange.End != 2012 {
		t.Errorf("YearRange = %+v", catalog.Metadata.Statistics.YearRange)
	}
	if catalog.Novelas[0].CreatedAt.IsZero() || catalog.Novelas[0].UpdatedAt.IsZero() {
		t.Error("merge timestamps not set")
	}
}

func TestMergeNeverRegressesData(t *testing.T) {
	merger, store := newTestMerger(t)

	if _, err := merger.Merge([]models.NovelaRecord{
		{Title: "Alma Gêmea", Synopsis: "original synopsis", Director: ""},
	}); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}

	stats, err := merger.Merge([]models.NovelaRecord{
		// Same key, diacritics stripped; conflicting synopsis, new director.
		{Title: "alma gemea", Synopsis: "different synopsis", Director: "Jorge Fernando"},
	})
	if err != nil {
		t.Fatalf("second merge failed: %v", err)
	}
	if stats.Added != 0 || stats.Updated != 1 || stats.Total != 1 {
		t.Errorf("stats = %+v", stats)
	}

	catalog, _ := store.Load()
	got := catalog.Novelas[0]
	if got.Synopsis != "original synopsis" {
		t.Errorf("non-empty synopsis overwritten: %q", got.Synopsis)
	}
	if got.Director != "Jorge Fernando" {
		t.Errorf("empty director not filled: %q", got.Director)
	}
	if got.Title != "Alma Gêmea" {
		t.Errorf("existing title replaced: %q", got.Title)
	}
}

func TestMergeGenreUnionCapped(t *testing.T) {
	merger, store := newTestMerger(t)

	if _, err := merger.Merge([]models.NovelaRecord{
		{Title: "Rubí", Genre: []string{"Drama", "Romance"}},
	}); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}
	if _, err := merger.Merge([]models.NovelaRecord{
		{Title: "Rubí", Genre: []string{"Romance", "Suspense", "Comédia", "Ação", "Aventura", "Terror"}},
	}); err != nil {
		t.Fatalf("second merge failed: %v", err)
	}

	catalog, _ := store.Load()
	got := catalog.Novelas[0].Genre
	if len(got) != 5 {
		t.Fatalf("Genre = %v, want 5 entries", got)
	}
	if got[0] != "Drama" || got[1] != "Romance" {
		t.Errorf("existing genre order not preserved: %v", got)
	}
	for _, g := range got {
		if g == "Terror" {
			t.Errorf("cap exceeded: %v", got)
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	merger, store := newTestMerger(t)
	records := []models.NovelaRecord{
		{Title: "Avenida Brasil", Synopsis: "s", Director: "d", Genre: []string{"Drama"}},
	}

	if _, err := merger.Merge(records); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}
	stats, err := merger.Merge(records)
	if err != nil {
		t.Fatalf("second merge failed: %v", err)
	}
	if stats.Added != 0 || stats.Updated != 0 {
		t.Errorf("re-merging identical records should change nothing: %+v", stats)
	}

	catalog, _ := store.Load()
	if len(catalog.Novelas) != 1 {
		t.Fatalf("expected 1 record, got %d", len(catalog.Novelas))
	}
}
