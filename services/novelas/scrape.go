package novelas

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"revius/models"
)

// htmlFetcher is the page-fetch collaborator; retries and pacing backoff live
// behind it.
type htmlFetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Options tune one scrape run.
type Options struct {
	Countries         []string // empty means all sources
	EnhanceDetails    bool
	MergeWithExisting bool
	MaxToEnhance      int
	Delay             time.Duration // pause between page fetches
}

// ScrapeReport aggregates a run's outcome; it is populated even on partial
// failure.
type ScrapeReport struct {
	SourcesProcessed int        `json:"sourcesProcessed"`
	NovelasFound     int        `json:"novelasFound"`
	Enhanced         int        `json:"enhanced"`
	Merged           MergeStats `json:"merged"`
	Errors           []string   `json:"errors,omitempty"`
}

// ScrapeService runs the list-page crawl, enrichment, and catalog merge.
type ScrapeService struct {
	fetcher htmlFetcher
	merger  *Merger
	sources []Source
	logger  *slog.Logger
}

// NewScrapeService wires the scrape pipeline. A nil logger falls back to the
// default slog logger.
func NewScrapeService(fetcher htmlFetcher, merger *Merger, logger *slog.Logger) *ScrapeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScrapeService{
		fetcher: fetcher,
		merger:  merger,
		sources: Sources(),
		logger:  logger,
	}
}

// RunScrape crawls the configured list pages serially with a fixed delay
// between fetches, deduplicates, optionally enriches detail pages, and
// optionally merges into the persisted catalog. Per-source and per-page
// failures are counted and skipped; only a failing save aborts the run.
func (s *ScrapeService) RunScrape(ctx context.Context, opts Options) (*ScrapeReport, error) {
	if opts.Delay == 0 {
		opts.Delay = 2 * time.Second
	}
	if opts.MaxToEnhance == 0 {
		opts.MaxToEnhance = 20
	}

	sources := FilterSources(s.sources, opts.Countries)
	report := &ScrapeReport{}
	var all []models.NovelaRecord

	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if i > 0 {
			if err := s.pause(ctx, opts.Delay); err != nil {
				return report, err
			}
		}

		records, err := s.scrapeSource(ctx, source)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", source.Name, err))
			s.logger.Error("source failed", "source", source.Name, "error", err)
			continue
		}
		report.SourcesProcessed++
		all = append(all, records...)
		s.logger.Info("source scraped", "source", source.Name, "records", len(records))
	}

	all = Dedup(all)
	AssignIDs(all)
	report.NovelasFound = len(all)

	if opts.EnhanceDetails {
		s.enhance(ctx, all, opts, report)
	}

	if opts.MergeWithExisting {
		stats, err := s.merger.Merge(all)
		if err != nil {
			// The only whole-run failure: everything scraped but nothing
			// durably saved.
			return report, fmt.Errorf("merge catalog: %w", err)
		}
		report.Merged = stats
	}

	s.logger.Info("scrape finished",
		"sources", report.SourcesProcessed,
		"found", report.NovelasFound,
		"added", report.Merged.Added,
		"updated", report.Merged.Updated,
		"errors", len(report.Errors))
	return report, nil
}

func (s *ScrapeService) scrapeSource(ctx context.Context, source Source) ([]models.NovelaRecord, error) {
	body, err := s.fetcher.Get(ctx, source.URL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source.URL, err)
	}
	return ParseListPage(doc, source), nil
}

// enhance visits detail pages for records that have an article link, up to
// the configured cap, with the same inter-fetch delay. A failed fetch drops
// that enhancement only.
func (s *ScrapeService) enhance(ctx context.Context, records []models.NovelaRecord, opts Options, report *ScrapeReport) {
	for i := range records {
		if report.Enhanced >= opts.MaxToEnhance {
			return
		}
		if ctx.Err() != nil {
			return
		}
		url := records[i].WikipediaURL
		if url == "" {
			continue
		}
		if err := s.pause(ctx, opts.Delay); err != nil {
			return
		}

		body, err := s.fetcher.Get(ctx, absoluteWikiURL(url))
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("enhance %s: %v", records[i].Title, err))
			s.logger.Warn("detail fetch failed", "title", records[i].Title, "error", err)
			continue
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("enhance %s: %v", records[i].Title, err))
			continue
		}
		EnrichDetail(doc, &records[i])
		report.Enhanced++
	}
}

func (s *ScrapeService) pause(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// absoluteWikiURL resolves the relative article hrefs Wikipedia list pages
// carry.
func absoluteWikiURL(href string) string {
	if len(href) >= 2 && href[:2] == "//" {
		return "https:" + href
	}
	if len(href) > 0 && href[0] == '/' {
		return "https://pt.wikipedia.org" + href
	}
	return href
}
