package novelas

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"revius/models"
	"revius/utils/textextract"
)

// ParseListPage extracts candidate records from one list page: wikitable rows
// through the source's column-heuristic parser, then content list items as a
// secondary sweep. Rows the validity filter rejects are dropped silently.
func ParseListPage(doc *goquery.Document, source Source) []models.NovelaRecord {
	parser := ParserFor(source.Type)
	now := time.Now().UTC()

	var records []models.NovelaRecord
	add := func(rec models.NovelaRecord, ok bool) {
		if !ok {
			return
		}
		rec.Country = source.Country
		rec.Broadcaster = source.Broadcaster
		rec.Scraped = now
		records = append(records, rec)
	}

	doc.Find("table.wikitable tr").Each(func(_ int, row *goquery.Selection) {
		cells, links := rowCells(row)
		if isHeaderRow(row, cells) {
			return
		}
		add(parser.Parse(cells, links))
	})

	doc.Find("div.mw-parser-output li").Each(func(_ int, item *goquery.Selection) {
		// Table rows are already covered; skip items nested in tables and
		// navigation boxes.
		if item.Closest("table").Length() > 0 || item.Closest(".navbox, .vector-menu, #toc, .toc").Length() > 0 {
			return
		}
		add(parseListItem(item))
	})

	return records
}

// rowCells flattens a table row into cell texts and the anchors they carry.
func rowCells(row *goquery.Selection) ([]string, []Link) {
	var cells []string
	var links []Link
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, textextract.Clean(cell.Text()))
		cell.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			links = append(links, Link{Text: a.Text(), Href: href})
		})
	})
	return cells, links
}

// isHeaderRow skips rows that are entirely header cells or empty.
func isHeaderRow(row *goquery.Selection, cells []string) bool {
	if row.Find("td").Length() == 0 {
		return true
	}
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// parseListItem handles bulleted content lists, where the novela is the
// item's first article link (or leading italic text) and the year trails in
// parentheses.
func parseListItem(item *goquery.Selection) (models.NovelaRecord, bool) {
	var links []Link
	item.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		links = append(links, Link{Text: a.Text(), Href: href})
	})

	title := ""
	for _, l := range links {
		if isArticleHref(l.Href) {
			title = textextract.Clean(l.Text)
			break
		}
	}
	if title == "" {
		title = textextract.Clean(item.Find("i").First().Text())
	}
	if title == "" {
		// Plain-text item: take the text up to the first parenthesis.
		text := textextract.Clean(item.Text())
		if idx := strings.IndexAny(text, "(–-"); idx > 0 {
			text = strings.TrimSpace(text[:idx])
		}
		title = text
	}

	rec := models.NovelaRecord{Title: title}
	itemText := textextract.Clean(item.Text())
	rec.Year.Start, rec.Year.End = textextract.YearRange(itemText)
	rec.Episodes = textextract.Episodes(itemText)
	return finishRow(rec, links)
}
