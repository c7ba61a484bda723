package novelas

import (
	"strings"

	"revius/models"
	"revius/utils/textextract"
)

// Link is an anchor extracted alongside a table row or list item.
type Link struct {
	Text string
	Href string
}

// RowParser turns one table row into a candidate record. ok is false when the
// row carries no usable novela (header rows, navigation labels, short rows).
type RowParser interface {
	Parse(cells []string, links []Link) (models.NovelaRecord, bool)
}

// ParserFor selects the column-heuristic parser for a source type.
func ParserFor(t SourceType) RowParser {
	switch t {
	case SourceTypeGlobo:
		return globoRowParser{}
	case SourceTypeSBT:
		return sbtRowParser{}
	case SourceTypeRecord:
		return recordRowParser{}
	case SourceTypeTelevisa:
		return televisaRowParser{}
	default:
		return genericRowParser{}
	}
}

// Globo list tables lead with the title, then broadcast period, then chapter
// count and credits.
type globoRowParser struct{}

func (globoRowParser) Parse(cells []string, links []Link) (models.NovelaRecord, bool) {
	if len(cells) < 2 {
		return models.NovelaRecord{}, false
	}
	rec := models.NovelaRecord{Title: textextract.Clean(cells[0])}
	rec.Year.Start, rec.Year.End = textextract.YearRange(cells[1])
	if len(cells) > 2 {
		rec.Episodes = textextract.Episodes(cells[2])
	}
	if len(cells) > 3 {
		rec.Author = textextract.Clean(cells[3])
	}
	if len(cells) > 4 {
		rec.Director = textextract.Clean(cells[4])
	}
	return finishRow(rec, links)
}

// SBT tables start with exhibition dates and number columns; the title sits
// in the third column.
type sbtRowParser struct{}

func (sbtRowParser) Parse(cells []string, links []Link) (models.NovelaRecord, bool) {
	if len(cells) < 3 {
		return models.NovelaRecord{}, false
	}
	rec := models.NovelaRecord{Title: textextract.Clean(cells[2])}
	rec.Year.Start, rec.Year.End = textextract.YearRange(cells[0] + " " + cells[1])
	if len(cells) > 3 {
		rec.Episodes = textextract.Episodes(cells[3])
	}
	if len(cells) > 4 {
		rec.Author = textextract.Clean(cells[4])
	}
	if len(cells) > 5 {
		rec.Director = textextract.Clean(cells[5])
	}
	return finishRow(rec, links)
}

// Record tables lead with the broadcast period, title second.
type recordRowParser struct{}

func (recordRowParser) Parse(cells []string, links []Link) (models.NovelaRecord, bool) {
	if len(cells) < 2 {
		return models.NovelaRecord{}, false
	}
	rec := models.NovelaRecord{Title: textextract.Clean(cells[1])}
	rec.Year.Start, rec.Year.End = textextract.YearRange(cells[0])
	if len(cells) > 2 {
		rec.Episodes = textextract.Episodes(cells[2])
	}
	if len(cells) > 3 {
		rec.Author = textextract.Clean(cells[3])
	}
	if len(cells) > 4 {
		rec.Director = textextract.Clean(cells[4])
	}
	return finishRow(rec, links)
}

// Televisa Anexo tables lead with the title; year and credits follow but the
// column layout varies per decade table, so trailing cells are scanned.
type televisaRowParser struct{}

func (televisaRowParser) Parse(cells []string, links []Link) (models.NovelaRecord, bool) {
	if len(cells) < 2 {
		return models.NovelaRecord{}, false
	}
	rec := models.NovelaRecord{Title: textextract.Clean(cells[0])}
	for _, cell := range cells[1:] {
		if rec.Year.Start == 0 {
			rec.Year.Start, rec.Year.End = textextract.YearRange(cell)
		}
		if rec.Episodes == 0 {
			rec.Episodes = textextract.Episodes(cell)
		}
	}
	return finishRow(rec, links)
}

// genericRowParser takes the first cell that survives the validity filter as
// the title and scans the rest for year and episode hints.
type genericRowParser struct{}

func (genericRowParser) Parse(cells []string, links []Link) (models.NovelaRecord, bool) {
	var rec models.NovelaRecord
	titleIdx := -1
	for i, cell := range cells {
		title := textextract.Clean(cell)
		if isValidTitle(title) {
			rec.Title = title
			titleIdx = i
			break
		}
	}
	if titleIdx < 0 {
		return models.NovelaRecord{}, false
	}
	for i, cell := range cells {
		if i == titleIdx {
			continue
		}
		if rec.Year.Start == 0 {
			rec.Year.Start, rec.Year.End = textextract.YearRange(cell)
		}
		if rec.Episodes == 0 {
			rec.Episodes = textextract.Episodes(cell)
		}
	}
	return finishRow(rec, links)
}

// finishRow applies shared cleanup: a title-embedded year, the article link,
// and the validity filter.
func finishRow(rec models.NovelaRecord, links []Link) (models.NovelaRecord, bool) {
	if title, year := textextract.SplitTitleYear(rec.Title); year != 0 {
		rec.Title = title
		if rec.Year.Start == 0 {
			rec.Year.Start = year
		}
	}
	rec.WikipediaURL = articleLink(rec.Title, links)
	if !isValidNovela(rec.Title, rec.WikipediaURL) {
		return models.NovelaRecord{}, false
	}
	return rec, true
}

// articleLink prefers the link whose text matches the title, then the first
// article-namespace link in the row.
func articleLink(title string, links []Link) string {
	var fallback string
	for _, l := range links {
		if !isArticleHref(l.Href) {
			continue
		}
		if strings.EqualFold(textextract.Clean(l.Text), title) {
			return l.Href
		}
		if fallback == "" {
			fallback = l.Href
		}
	}
	return fallback
}

func isArticleHref(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	if strings.Contains(href, "redlink=1") || strings.Contains(href, "action=edit") {
		return false
	}
	lower := strings.ToLower(href)
	for _, ns := range hrefDenylist {
		if strings.Contains(lower, ns) {
			return false
		}
	}
	return strings.Contains(href, "/wiki/")
}

// hrefDenylist blocks wiki-namespace and navigation URLs.
var hrefDenylist = []string{
	"/wiki/lista_", "/wiki/anexo:", "/wiki/categoria:", "/wiki/category:",
	"/wiki/wikip%c3%a9dia:", "/wiki/wikipedia:", "/wiki/predefini%c3%a7%c3%a3o:",
	"/wiki/template:", "/wiki/ficheiro:", "/wiki/file:", "/wiki/archivo:",
	"/wiki/especial:", "/wiki/special:", "/wiki/ajuda:", "/wiki/help:",
	"/wiki/portal:", "/wiki/usu%c3%a1rio:", "/wiki/user:",
	"/wiki/discuss%c3%a3o:", "/wiki/talk:",
}

// titleDenylist blocks navigation labels and wiki chrome that leak out of
// list markup as if they were titles.
var titleDenylist = []string{
	"lista de", "listas de", "lists of", "list of", "anexo", "categoria",
	"category", "wikipédia", "wikipedia", "predefinição", "template",
	"ficheiro", "file:", "archivo", "especial", "special:", "ajuda", "help:",
	"portal", "usuário", "user:", "discussão", "talk:", "ver também",
	"see also", "véase también", "referências", "references", "referencias",
	"ligações externas", "external links", "enlaces externos", "notas",
	"bibliografia", "bibliography", "editar", "edit", "telenovelas da",
	"telenovelas do", "telenovelas de", "emissoras", "navegação",
	"navigation", "menu", "índice", "contents", "décadas", "decades",
}

func isValidTitle(title string) bool {
	if len(title) < 3 || len(title) > 100 {
		return false
	}
	lower := strings.ToLower(title)
	for _, term := range titleDenylist {
		if strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

// isValidNovela is the shared validity gate every parsed row passes through.
func isValidNovela(title, wikipediaURL string) bool {
	if !isValidTitle(title) {
		return false
	}
	if wikipediaURL != "" && !isArticleHref(wikipediaURL) {
		return false
	}
	return true
}
