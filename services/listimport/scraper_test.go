package listimport

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeFetcher struct {
	body     string
	finalURL string
	err      error
}

func (f *fakeFetcher) GetFollow(_ context.Context, _ string) ([]byte, string, error) {
	return []byte(f.body), f.finalURL, f.err
}

func scrape(t *testing.T, html, finalURL string) []string {
	t.Helper()
	s := NewScraper(&fakeFetcher{body: html, finalURL: finalURL})
	scraped, err := s.ScrapeList(context.Background(), finalURL)
	if err != nil {
		t.Fatalf("ScrapeList failed: %v", err)
	}
	titles := make([]string, 0, len(scraped.Entries))
	for _, e := range scraped.Entries {
		titles = append(titles, e.Title)
	}
	return titles
}

func TestScrapePosterList(t *testing.T) {
	html := `<html><body><ul>
		<li class="poster-container"><div data-film-name="The Matrix" data-film-release-year="1999"></div></li>
		<li class="poster-container"><div data-film-name="Heat" data-film-release-year="1995"></div></li>
	</ul></body></html>`

	s := NewScraper(&fakeFetcher{body: html, finalURL: "https://letterboxd.com/u/list/x/"})
	scraped, err := s.ScrapeList(context.Background(), "https://letterboxd.com/u/list/x/")
	if err != nil {
		t.Fatalf("ScrapeList failed: %v", err)
	}
	if len(scraped.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(scraped.Entries))
	}
	if scraped.Entries[0].Title != "The Matrix" || scraped.Entries[0].Year != 1999 {
		t.Errorf("unexpected first entry: %+v", scraped.Entries[0])
	}
	if scraped.Entries[1].Year != 1995 {
		t.Errorf("expected year 1995, got %d", scraped.Entries[1].Year)
	}
}

func TestScrapeHeadingsStripYearSuffix(t *testing.T) {
	html := `<html><body><ol>
		<li><h2>Cidade de Deus (2002)</h2></li>
		<li><h2>Central do Brasil</h2></li>
	</ol></body></html>`

	s := NewScraper(&fakeFetcher{body: html, finalURL: "https://letterboxd.com/u/list/x/"})
	scraped, err := s.ScrapeList(context.Background(), "https://letterboxd.com/u/list/x/")
	if err != nil {
		t.Fatalf("ScrapeList failed: %v", err)
	}
	if len(scraped.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(scraped.Entries))
	}
	if scraped.Entries[0].Title != "Cidade de Deus" || scraped.Entries[0].Year != 2002 {
		t.Errorf("year suffix not stripped: %+v", scraped.Entries[0])
	}
	if scraped.Entries[1].Year != 0 {
		t.Errorf("expected unknown year, got %d", scraped.Entries[1].Year)
	}
}

func TestScrapeFilmSlugFallback(t *testing.T) {
	html := `<html><body>
		<a href="/film/the-grand-budapest-hotel-2014/">poster</a>
		<a href="/film/the-grand-budapest-hotel-2014/">same film again</a>
		<a href="/film/parasite-2019/">poster</a>
		<a href="/about/">not a film</a>
	</body></html>`

	s := NewScraper(&fakeFetcher{body: html, finalURL: "https://letterboxd.com/u/list/x/"})
	scraped, err := s.ScrapeList(context.Background(), "https://letterboxd.com/u/list/x/")
	if err != nil {
		t.Fatalf("ScrapeList failed: %v", err)
	}
	if len(scraped.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(scraped.Entries), scraped.Entries)
	}
	if scraped.Entries[0].Title != "The Grand Budapest Hotel" || scraped.Entries[0].Year != 2014 {
		t.Errorf("slug not humanized: %+v", scraped.Entries[0])
	}
	if scraped.Entries[1].Title != "Parasite" || scraped.Entries[1].Year != 2019 {
		t.Errorf("slug not humanized: %+v", scraped.Entries[1])
	}
}

func TestScrapeStrategyOrder(t *testing.T) {
	// Poster markup present: heading and slug fallbacks must not fire.
	html := `<html><body>
		<li class="poster-container"><div data-film-name="Primary"></div></li>
		<li><h2>Fallback Heading</h2></li>
		<a href="/film/fallback-slug/">x</a>
	</body></html>`

	titles := scrape(t, html, "https://letterboxd.com/u/list/x/")
	if len(titles) != 1 || titles[0] != "Primary" {
		t.Fatalf("expected only poster-list entry, got %v", titles)
	}
}

func TestScrapeListNameFallbacks(t *testing.T) {
	tests := []struct {
		name string
		html string
		url  string
		want string
	}{
		{
			name: "og title wins",
			html: `<html><head><meta property="og:title" content="Best of Brazil"><title>ignored</title></head><body><li><h2>X</h2></li></body></html>`,
			url:  "https://letterboxd.com/u/list/best/",
			want: "Best of Brazil",
		},
		{
			name: "h1 title",
			html: `<html><body><h1 class="title-1">Telenovela Classics</h1><li><h2>X</h2></li></body></html>`,
			url:  "https://letterboxd.com/u/list/classics/",
			want: "Telenovela Classics",
		},
		{
			name: "title tag with suffix",
			html: `<html><head><title>Winter Watchlist &#8226; Letterboxd</title></head><body><li><h2>X</h2></li></body></html>`,
			url:  "https://letterboxd.com/u/list/winter/",
			want: "Winter Watchlist",
		},
		{
			name: "url slug fallback",
			html: `<html><body><li><h2>X</h2></li></body></html>`,
			url:  "https://letterboxd.com/u/list/hidden-gems/",
			want: "Hidden Gems",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScraper(&fakeFetcher{body: tt.html, finalURL: tt.url})
			scraped, err := s.ScrapeList(context.Background(), tt.url)
			if err != nil {
				t.Fatalf("ScrapeList failed: %v", err)
			}
			if scraped.Name != tt.want {
				t.Errorf("got name %q, want %q", scraped.Name, tt.want)
			}
		})
	}
}

func TestScrapeDedupAndCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	// Duplicate pair that should collapse to one entry.
	b.WriteString(`<li class="poster-container"><div data-film-name="Avenida Brasil" data-film-release-year="2012"></div></li>`)
	b.WriteString(`<li class="poster-container"><div data-film-name="Avenida Brasil" data-film-release-year="2013"></div></li>`)
	for i := 0; i < 150; i++ {
		fmt.Fprintf(&b, `<li class="poster-container"><div data-film-name="Film %d" data-film-release-year="2000"></div></li>`, i)
	}
	b.WriteString("</ul></body></html>")

	s := NewScraper(&fakeFetcher{body: b.String(), finalURL: "https://letterboxd.com/u/list/x/"})
	scraped, err := s.ScrapeList(context.Background(), "https://letterboxd.com/u/list/x/")
	if err != nil {
		t.Fatalf("ScrapeList failed: %v", err)
	}
	if len(scraped.Entries) != 100 {
		t.Fatalf("expected cap at 100 entries, got %d", len(scraped.Entries))
	}
	if scraped.Entries[0].Title != "Avenida Brasil" || scraped.Entries[0].Year != 2012 {
		t.Errorf("expected first occurrence kept, got %+v", scraped.Entries[0])
	}
	if scraped.Entries[1].Title != "Film 0" {
		t.Errorf("expected duplicate dropped, got %+v", scraped.Entries[1])
	}

	s.MaxEntries = 25
	scraped, err = s.ScrapeList(context.Background(), "https://letterboxd.com/u/list/x/")
	if err != nil {
		t.Fatalf("ScrapeList failed: %v", err)
	}
	if len(scraped.Entries) != 25 {
		t.Fatalf("expected configured cap of 25 entries, got %d", len(scraped.Entries))
	}
}

func TestScrapeEmptyPageNoError(t *testing.T) {
	s := NewScraper(&fakeFetcher{body: "<html><body><p>nothing here</p></body></html>", finalURL: "https://letterboxd.com/u/list/x/"})
	scraped, err := s.ScrapeList(context.Background(), "https://letterboxd.com/u/list/x/")
	if err != nil {
		t.Fatalf("expected no error for empty page, got %v", err)
	}
	if len(scraped.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(scraped.Entries))
	}
}
