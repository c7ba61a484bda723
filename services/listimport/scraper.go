package listimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"revius/models"
	"revius/utils/similarity"
	"revius/utils/textextract"
)

// ErrUnsupportedService is returned for services the importer cannot scrape.
var ErrUnsupportedService = errors.New("unsupported import service")

const defaultMaxEntries = 100

// pageFetcher abstracts the HTTP layer so scraper tests run on canned HTML.
type pageFetcher interface {
	GetFollow(ctx context.Context, url string) (body []byte, finalURL string, err error)
}

// Scraper extracts list metadata and raw entries from an external list page.
type Scraper struct {
	fetcher pageFetcher

	// MaxEntries caps how many entries one list yields; 0 means the
	// default of 100.
	MaxEntries int
}

// NewScraper constructs a list scraper over the given fetcher.
func NewScraper(fetcher pageFetcher) *Scraper {
	return &Scraper{fetcher: fetcher}
}

var filmSlugRe = regexp.MustCompile(`/film/([a-z0-9-]+)/?`)

// ScrapeList fetches and parses a list URL. Short links (boxd.it) are
// resolved to their canonical URL by following redirects. An HTTP failure
// propagates as a typed fetch error; a page where no structural pattern
// matches returns an empty entry list, not an error — the caller decides
// whether that is user-facing.
func (s *Scraper) ScrapeList(ctx context.Context, listURL string) (models.ScrapedList, error) {
	body, finalURL, err := s.fetcher.GetFollow(ctx, listURL)
	if err != nil {
		return models.ScrapedList{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return models.ScrapedList{}, fmt.Errorf("parse list page: %w", err)
	}

	scraped := models.ScrapedList{
		Name:        extractListName(doc, finalURL),
		Description: extractListDescription(doc),
		Entries:     extractEntries(doc),
	}

	scraped.Entries = dedupEntries(scraped.Entries)
	limit := s.MaxEntries
	if limit <= 0 {
		limit = defaultMaxEntries
	}
	if len(scraped.Entries) > limit {
		scraped.Entries = scraped.Entries[:limit]
	}

	log.Printf("[listimport] scraped %q: %d entries", scraped.Name, len(scraped.Entries))
	return scraped, nil
}

// extractListName tries a sequence of structural patterns in priority order
// and stops at the first non-empty match.
func extractListName(doc *goquery.Document, pageURL string) string {
	if name, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if trimmed := textextract.Clean(name); trimmed != "" {
			return trimmed
		}
	}

	if name := textextract.Clean(doc.Find("h1.title-1").First().Text()); name != "" {
		return name
	}

	if title := textextract.Clean(doc.Find("title").First().Text()); title != "" {
		// "<list name> - a list by <user> • Letterboxd" style suffixes.
		for _, sep := range []string{"•", " - a list", " | "} {
			if idx := strings.Index(title, sep); idx > 0 {
				title = title[:idx]
			}
		}
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			return trimmed
		}
	}

	// Last resort: humanize the final URL path segment.
	if u, err := url.Parse(pageURL); err == nil {
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(segments) > 0 {
			if slug := segments[len(segments)-1]; slug != "" {
				return humanizeSlug(slug)
			}
		}
	}

	return "Imported list"
}

func extractListDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if trimmed := textextract.Clean(desc); trimmed != "" {
			return trimmed
		}
	}
	return textextract.Clean(doc.Find(".list-notes, .body-text").First().Text())
}

// extractEntries tries three structural strategies in order of reliability,
// falling through only when the previous strategy produced zero entries.
// Each strategy independently strips a trailing "(YYYY)" from titles.
func extractEntries(doc *goquery.Document) []models.RawListEntry {
	strategies := []func(*goquery.Document) []models.RawListEntry{
		entriesFromPosterList,
		entriesFromDataAttributes,
		entriesFromListHeadings,
		entriesFromFilmSlugs,
	}

	for _, strategy := range strategies {
		if entries := strategy(doc); len(entries) > 0 {
			return entries
		}
	}
	return nil
}

// Strategy 1: structured poster-list markup.
func entriesFromPosterList(doc *goquery.Document) []models.RawListEntry {
	var entries []models.RawListEntry
	doc.Find("li.poster-container div[data-film-name]").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("data-film-name")
		year := 0
		if y, ok := sel.Attr("data-film-release-year"); ok {
			year = textextract.Year(y)
		}
		appendEntry(&entries, name, year)
	})
	return entries
}

// Strategy 2: any element with the film-name data attribute.
func entriesFromDataAttributes(doc *goquery.Document) []models.RawListEntry {
	var entries []models.RawListEntry
	doc.Find("[data-film-name]").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("data-film-name")
		appendEntry(&entries, name, 0)
	})
	return entries
}

// Strategy 3: generic list items with headings.
func entriesFromListHeadings(doc *goquery.Document) []models.RawListEntry {
	var entries []models.RawListEntry
	doc.Find("li h2, li h3").Each(func(_ int, sel *goquery.Selection) {
		appendEntry(&entries, sel.Text(), 0)
	})
	return entries
}

// Final fallback: film permalink slugs embedded in the page, humanized.
func entriesFromFilmSlugs(doc *goquery.Document) []models.RawListEntry {
	var entries []models.RawListEntry
	seen := make(map[string]struct{})
	doc.Find(`a[href*="/film/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		m := filmSlugRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		slug := m[1]
		if _, dup := seen[slug]; dup {
			return
		}
		seen[slug] = struct{}{}
		appendEntry(&entries, humanizeSlug(slug), 0)
	})
	return entries
}

// appendEntry parses and strips a trailing "(YYYY)" year suffix before
// storing the entry.
func appendEntry(entries *[]models.RawListEntry, rawTitle string, year int) {
	title, parsedYear := textextract.SplitTitleYear(textextract.Clean(rawTitle))
	if title == "" {
		return
	}
	if year == 0 {
		year = parsedYear
	}
	*entries = append(*entries, models.RawListEntry{Title: title, Year: year})
}

// humanizeSlug turns "the-grand-budapest-hotel-2014" into
// "The Grand Budapest Hotel (2014)" minus the year handling done upstream.
func humanizeSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	title := strings.Join(words, " ")

	// A trailing 4-digit segment is almost always a release year.
	if len(words) > 1 {
		if y := textextract.Year(words[len(words)-1]); y != 0 && words[len(words)-1] == fmt.Sprint(y) {
			title = strings.Join(words[:len(words)-1], " ") + fmt.Sprintf(" (%d)", y)
		}
	}
	return title
}

// dedupEntries removes in-page duplicates: same normalized title with years
// equal, within one year of each other, or unknown on either side.
func dedupEntries(entries []models.RawListEntry) []models.RawListEntry {
	out := make([]models.RawListEntry, 0, len(entries))
	byKey := make(map[string][]int, len(entries))

	for _, e := range entries {
		key := similarity.NormalizeKey(e.Title)
		dup := false
		for _, year := range byKey[key] {
			if e.Year == 0 || year == 0 || abs(e.Year-year) <= 1 {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		byKey[key] = append(byKey[key], e.Year)
		out = append(out, e)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
