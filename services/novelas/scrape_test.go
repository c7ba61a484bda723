package novelas

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

type stubFetcher struct {
	pages map[string]string // url substring -> html
	fails map[string]error  // url substring -> error
}

func (f *stubFetcher) Get(_ context.Context, url string) ([]byte, error) {
	for frag, err := range f.fails {
		if strings.Contains(url, frag) {
			return nil, err
		}
	}
	for frag, html := range f.pages {
		if strings.Contains(url, frag) {
			return []byte(html), nil
		}
	}
	return nil, errors.New("no stub page for " + url)
}

const globoListPage = `<html><body><div class="mw-parser-output"><table class="wikitable">
	<tr><th>Título</th><th>Ano</th></tr>
	<tr><td><a href="/wiki/Avenida_Brasil_(telenovela)">Avenida Brasil</a></td><td>2012</td></tr>
	<tr><td>Alma Gêmea</td><td>2005</td></tr>
</table></div></body></html>`

const sbtListPage = `<html><body><div class="mw-parser-output"><table class="wikitable">
	<tr><th>Início</th><th>Fim</th><th>Título</th></tr>
	<tr><td>2005</td><td>2005</td><td>Alma Gemea</td></tr>
	<tr><td>1999</td><td>2000</td><td>Pícara Sonhadora</td></tr>
</table></div></body></html>`

const detailPageStub = `<html><body><div class="mw-parser-output">
	<table class="infobox"><tr><th>Direção</th><td>Jorge Fernando</td></tr></table>
</div></body></html>`

func newScrapeFixture(fetcher *stubFetcher) (*ScrapeService, *FileCatalogStore) {
	store := NewFileCatalogStoreFS(afero.NewMemMapFs(), "/data/catalog.json")
	svc := NewScrapeService(fetcher, NewMerger(store), nil)
	return svc, store
}

func TestRunScrapeDedupsAcrossSources(t *testing.T) {
	fetcher := &stubFetcher{
		pages: map[string]string{
			"TV_Globo": globoListPage,
			"SBT":      sbtListPage,
		},
		fails: map[string]error{
			"RecordTV":  errors.New("blocked"),
			"Televisa":  errors.New("blocked"),
			"Category:": errors.New("blocked"),
		},
	}
	svc, store := newScrapeFixture(fetcher)

	report, err := svc.RunScrape(context.Background(), Options{
		MergeWithExisting: true,
		Delay:             time.Nanosecond,
	})
	if err != nil {
		t.Fatalf("RunScrape failed: %v", err)
	}

	if report.SourcesProcessed != 2 {
		t.Errorf("SourcesProcessed = %d, want 2", report.SourcesProcessed)
	}
	// "Alma Gêmea" and "Alma Gemea" collapse to one key.
	if report.NovelasFound != 3 {
		t.Errorf("NovelasFound = %d, want 3", report.NovelasFound)
	}
	if len(report.Errors) != 3 {
		t.Errorf("Errors = %v, want 3 source failures", report.Errors)
	}
	if report.Merged.Added != 3 {
		t.Errorf("Merged.Added = %d, want 3", report.Merged.Added)
	}

	catalog, _ := store.Load()
	if len(catalog.Novelas) != 3 {
		t.Fatalf("catalog has %d records, want 3", len(catalog.Novelas))
	}
	for _, rec := range catalog.Novelas {
		if rec.ID == "" {
			t.Errorf("record %q missing ID", rec.Title)
		}
	}
}

func TestRunScrapeEnhancesDetailPages(t *testing.T) {
	fetcher := &stubFetcher{
		pages: map[string]string{
			"TV_Globo":        globoListPage,
			"Avenida_Brasil_": detailPageStub,
		},
		fails: map[string]error{
			"SBT": errors.New("blocked"), "RecordTV": errors.New("blocked"),
			"Televisa": errors.New("blocked"), "Category:": errors.New("blocked"),
		},
	}
	svc, store := newScrapeFixture(fetcher)

	report, err := svc.RunScrape(context.Background(), Options{
		EnhanceDetails:    true,
		MergeWithExisting: true,
		MaxToEnhance:      1,
		Delay:             time.Nanosecond,
	})
	if err != nil {
		t.Fatalf("RunScrape failed: %v", err)
	}
	if report.Enhanced != 1 {
		t.Errorf("Enhanced = %d, want 1", report.Enhanced)
	}

	catalog, _ := store.Load()
	for _, rec := range catalog.Novelas {
		if rec.Title == "Avenida Brasil" && rec.Director != "Jorge Fernando" {
			t.Errorf("enhancement not applied: %+v", rec)
		}
	}
}

func TestRunScrapeAllSourcesFailingStillReports(t *testing.T) {
	fetcher := &stubFetcher{fails: map[string]error{"wikipedia.org": errors.New("down"), "Category:": errors.New("down")}}
	svc, _ := newScrapeFixture(fetcher)

	report, err := svc.RunScrape(context.Background(), Options{Delay: time.Nanosecond})
	if err != nil {
		t.Fatalf("source failures must not fail the run, got %v", err)
	}
	if report.SourcesProcessed != 0 || report.NovelasFound != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(report.Errors) != len(Sources()) {
		t.Errorf("expected one error per source, got %v", report.Errors)
	}
}

func TestRunScrapeSaveFailureFailsRun(t *testing.T) {
	fetcher := &stubFetcher{
		pages: map[string]string{"TV_Globo": globoListPage},
		fails: map[string]error{
			"SBT": errors.New("blocked"), "RecordTV": errors.New("blocked"),
			"Televisa": errors.New("blocked"), "Category:": errors.New("blocked"),
		},
	}
	store := NewFileCatalogStoreFS(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/data/catalog.json")
	svc := NewScrapeService(fetcher, NewMerger(store), nil)

	if _, err := svc.RunScrape(context.Background(), Options{MergeWithExisting: true, Delay: time.Nanosecond}); err == nil {
		t.Fatal("a failing save must fail the whole run")
	}
}

func TestRunScrapeCountryFilter(t *testing.T) {
	fetcher := &stubFetcher{
		pages: map[string]string{"wikipedia.org": globoListPage},
	}
	svc, _ := newScrapeFixture(fetcher)

	report, err := svc.RunScrape(context.Background(), Options{Countries: []string{"br"}, Delay: time.Nanosecond})
	if err != nil {
		t.Fatalf("RunScrape failed: %v", err)
	}
	if report.SourcesProcessed != 3 {
		t.Errorf("SourcesProcessed = %d, want 3 Brazilian sources", report.SourcesProcessed)
	}
}

func TestRunScrapeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc, _ := newScrapeFixture(&stubFetcher{})
	if _, err := svc.RunScrape(ctx, Options{Delay: time.Nanosecond}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
