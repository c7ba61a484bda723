// Package listimport reconciles an external list URL into a persisted list
// with per-item provenance and partial-failure accounting.
package listimport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"revius/models"
	"revius/utils/similarity"
)

var (
	// ErrNoEntries means the page fetched fine but produced no scrapeable
	// entries; no list is created.
	ErrNoEntries = errors.New("no items found in list")
	// ErrInvalidURL means the URL does not look like a list for the
	// requested service.
	ErrInvalidURL = errors.New("invalid list url")
)

// matcher resolves one raw entry into ranked candidates.
type matcher interface {
	Search(ctx context.Context, entry models.RawListEntry) []models.CandidateMatch
}

// ListStore is the persistence boundary for imports.
type ListStore interface {
	CreateList(ctx context.Context, list models.ImportedList) error
	BulkInsertItems(ctx context.Context, items []models.ResolvedListItem) error
}

// Options tune the import loop.
type Options struct {
	PauseEvery int           // pause after this many entries (0 means the default of 5, negative disables)
	Pause      time.Duration // duration of the pacing pause
}

// Service orchestrates scrape → match → persist for one import.
type Service struct {
	scraper *Scraper
	matcher matcher
	store   ListStore
	opts    Options
}

// NewService wires the import pipeline together.
func NewService(scraper *Scraper, m matcher, store ListStore, opts Options) *Service {
	if opts.PauseEvery == 0 {
		opts.PauseEvery = 5
	}
	if opts.Pause == 0 {
		opts.Pause = time.Second
	}
	return &Service{scraper: scraper, matcher: m, store: store, opts: opts}
}

// Import runs a full list import. Items that fail to resolve degrade to
// manual-fallback rows and are reported in the result; they never abort the
// batch. The returned error is non-nil only for whole-operation failures
// (unsupported service, unreachable URL, zero entries, list creation).
func (s *Service) Import(ctx context.Context, listURL, service, ownerUserID string) (models.ImportResult, error) {
	if err := validateServiceURL(listURL, service); err != nil {
		return models.ImportResult{}, err
	}

	scraped, err := s.scraper.ScrapeList(ctx, listURL)
	if err != nil {
		return models.ImportResult{}, err
	}
	if len(scraped.Entries) == 0 {
		return models.ImportResult{}, ErrNoEntries
	}

	list := models.ImportedList{
		ID:          uuid.NewString(),
		Name:        scraped.Name,
		Description: scraped.Description,
		IsPublic:    false,
		OwnerUserID: ownerUserID,
		SourceURL:   listURL,
		Service:     service,
		CreatedAt:   time.Now().UTC(),
	}

	// Create the list first so a partially-matched import still yields a
	// usable, visible list.
	if err := s.store.CreateList(ctx, list); err != nil {
		return models.ImportResult{}, fmt.Errorf("create list: %w", err)
	}

	result := models.ImportResult{
		Success:    true,
		ListID:     list.ID,
		ListName:   list.Name,
		ItemsCount: len(scraped.Entries),
	}

	items := make([]models.ResolvedListItem, 0, len(scraped.Entries))
	for i, entry := range scraped.Entries {
		if err := ctx.Err(); err != nil {
			return models.ImportResult{}, err
		}

		position := i + 1
		item, matched := s.resolveEntry(ctx, list.ID, position, entry)
		items = append(items, item)

		if matched {
			result.MatchedCount++
		} else {
			result.FailedCount++
			result.FailedItems = append(result.FailedItems, models.FailedImportItem{
				Title:    entry.Title,
				Year:     entry.Year,
				Reason:   "no match above similarity threshold",
				Position: position,
			})
		}

		// Periodic pacing pause to stay under upstream rate limits.
		if s.opts.PauseEvery > 0 && position%s.opts.PauseEvery == 0 && position < len(scraped.Entries) {
			select {
			case <-time.After(s.opts.Pause):
			case <-ctx.Done():
				return models.ImportResult{}, ctx.Err()
			}
		}
	}

	// Insertion failure is logged but the already-created list survives;
	// the import reports what it resolved either way.
	if err := s.store.BulkInsertItems(ctx, items); err != nil {
		log.Printf("[listimport] bulk insert for list %s failed: %v", list.ID, err)
	}

	result.MatchPercentage = int(math.Round(float64(result.MatchedCount) / float64(result.ItemsCount) * 100))

	log.Printf("[listimport] imported %q: %d items, %d matched, %d manual",
		list.Name, result.ItemsCount, result.MatchedCount, result.FailedCount)
	return result, nil
}

// resolveEntry matches one entry against all sources. Any failure degrades
// to a manual-fallback item rather than an error.
func (s *Service) resolveEntry(ctx context.Context, listID string, position int, entry models.RawListEntry) (models.ResolvedListItem, bool) {
	candidates := s.matcher.Search(ctx, entry)

	item := models.ResolvedListItem{
		ID:        uuid.NewString(),
		ListID:    listID,
		Position:  position,
		Title:     entry.Title,
		Year:      entry.Year,
		CreatedAt: time.Now().UTC(),
	}

	if len(candidates) == 0 {
		item.SourceName = models.SourceManual
		item.ExternalID = manualExternalID(entry)
		item.MediaType = models.MediaTypeMovie
		return item, false
	}

	top := candidates[0]
	item.Title = top.Title
	if top.Year != 0 {
		item.Year = top.Year
	}
	item.ExternalID = top.ExternalID
	item.MediaType = top.MediaType
	item.SourceName = top.SourceName
	item.PosterURL = top.PosterURL
	item.Rating = top.Rating
	item.Synopsis = top.Synopsis
	item.ExternalURL = top.ExternalURL
	return item, true
}

// manualExternalID synthesizes a stable identifier from title and year for
// unmatched items.
func manualExternalID(entry models.RawListEntry) string {
	id := "manual:" + similarity.NormalizeKey(entry.Title)
	if entry.Year != 0 {
		id += ":" + strconv.Itoa(entry.Year)
	}
	return id
}

// validateServiceURL fails fast on unsupported services or malformed URLs,
// before anything is written.
func validateServiceURL(listURL, service string) error {
	if strings.ToLower(strings.TrimSpace(service)) != "letterboxd" {
		return fmt.Errorf("%w: %q", ErrUnsupportedService, service)
	}

	u, err := url.Parse(strings.TrimSpace(listURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, listURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host != "letterboxd.com" && !strings.HasSuffix(host, ".letterboxd.com") && host != "boxd.it" {
		return fmt.Errorf("%w: host %q is not a letterboxd list", ErrInvalidURL, host)
	}
	return nil
}
