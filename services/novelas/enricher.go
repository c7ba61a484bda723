package novelas

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"revius/models"
	"revius/utils/similarity"
	"revius/utils/textextract"
)

const (
	maxCastMembers = 10
	maxGenres      = 5
)

// Infobox label keywords per field, matched after diacritic stripping so one
// list covers the Portuguese, English and Spanish label variants.
var (
	castLabels     = []string{"elenco", "protagonistas", "starring", "reparto", "estelares"}
	directorLabels = []string{"direcao", "diretor", "directedby", "director", "direccion"}
	authorLabels   = []string{"autor", "criado", "escrito", "writtenby", "createdby", "creador", "historiaoriginal", "argumento"}
	genreLabels    = []string{"genero", "genre", "formato"}
	countryLabels  = []string{"pais", "country", "paisdeorigem", "countryoforigin"}
	episodeLabels  = []string{"episodios", "capitulos", "episodes", "ndeepisodios", "ndecapitulos"}
	runLabels      = []string{"exibicao", "transmissao", "originalrelease", "originalrun", "emision", "periododeexibicao"}
)

// EnrichDetail fills a record from its Wikipedia article: infobox fields by
// fuzzy label matching, synopsis from the lead paragraph, and the best poster
// image. List-page data already present on the record is never overwritten.
func EnrichDetail(doc *goquery.Document, rec *models.NovelaRecord) {
	doc.Find("table.infobox tr, table.infobox_v2 tr").Each(func(_ int, row *goquery.Selection) {
		label := similarity.NormalizeKey(row.Find("th").First().Text())
		if label == "" {
			return
		}
		value := row.Find("td").First()
		if value.Length() == 0 {
			return
		}

		switch {
		case labelMatches(label, castLabels):
			if len(rec.Cast) == 0 {
				rec.Cast = splitNames(value, maxCastMembers)
			}
		case labelMatches(label, directorLabels):
			if rec.Director == "" {
				rec.Director = firstName(value)
			}
		case labelMatches(label, authorLabels):
			if rec.Author == "" {
				rec.Author = firstName(value)
			}
		case labelMatches(label, genreLabels):
			if len(rec.Genre) == 0 {
				rec.Genre = splitGenres(value.Text())
			}
		case labelMatches(label, countryLabels):
			if rec.Country == "" {
				rec.Country = textextract.Clean(value.Text())
			}
		case labelMatches(label, episodeLabels):
			if rec.Episodes == 0 {
				rec.Episodes = textextract.Episodes(value.Text())
				if rec.Episodes == 0 {
					rec.Episodes = firstNumber(value.Text())
				}
			}
		case labelMatches(label, runLabels):
			if rec.Year.Start == 0 {
				rec.Year.Start, rec.Year.End = textextract.YearRange(value.Text())
			}
		}
	})

	if rec.Synopsis == "" {
		rec.Synopsis = leadParagraph(doc)
	}
	if rec.ImageURL == "" {
		rec.ImageURL = bestPoster(doc)
	}
}

func labelMatches(normalizedLabel string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(normalizedLabel, kw) {
			return true
		}
	}
	return false
}

// splitNames reads list items first, then falls back to splitting the cell
// text on commas and line noise.
func splitNames(cell *goquery.Selection, limit int) []string {
	var names []string
	cell.Find("li").Each(func(_ int, li *goquery.Selection) {
		if name := textextract.Clean(li.Text()); name != "" {
			names = append(names, name)
		}
	})
	if len(names) == 0 {
		cell.Find("a").Each(func(_ int, a *goquery.Selection) {
			if name := textextract.Clean(a.Text()); len(name) > 2 {
				names = append(names, name)
			}
		})
	}
	if len(names) == 0 {
		for _, part := range strings.Split(cell.Text(), ",") {
			if name := textextract.Clean(part); name != "" {
				names = append(names, name)
			}
		}
	}
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

func firstName(cell *goquery.Selection) string {
	if names := splitNames(cell, 1); len(names) > 0 {
		return names[0]
	}
	return ""
}

func splitGenres(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '/' || r == ';' || r == '\n'
	})
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := textextract.Clean(p); g != "" && len(g) < 40 {
			genres = append(genres, g)
		}
		if len(genres) == maxGenres {
			break
		}
	}
	return genres
}

var numberRe = regexp.MustCompile(`\d+`)

func firstNumber(s string) int {
	m := numberRe.FindString(s)
	if m == "" {
		return 0
	}
	n := 0
	for _, d := range m {
		n = n*10 + int(d-'0')
	}
	return n
}

// leadParagraph returns the first substantial content paragraph.
func leadParagraph(doc *goquery.Document) string {
	synopsis := ""
	doc.Find("div.mw-parser-output > p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := textextract.Clean(p.Text())
		if len(text) < 50 {
			return true
		}
		synopsis = text
		return false
	})
	if len(synopsis) > 600 {
		cut := 600
		for cut > 0 && !utf8.RuneStart(synopsis[cut]) {
			cut--
		}
		synopsis = synopsis[:cut]
		if idx := strings.LastIndex(synopsis, ". "); idx > 100 {
			synopsis = synopsis[:idx+1]
		}
	}
	return synopsis
}

// Poster resolution: infobox image beats thumbnail beats any content image.
var posterTiers = []string{
	"table.infobox img, table.infobox_v2 img",
	".thumb img, figure img, img.thumbimage",
	"div.mw-parser-output img",
}

var thumbWidthRe = regexp.MustCompile(`/(\d+)px-`)

func bestPoster(doc *goquery.Document) string {
	for _, tier := range posterTiers {
		best := ""
		bestScore := -1
		doc.Find(tier).Each(func(_ int, img *goquery.Selection) {
			src, _ := img.Attr("src")
			if src == "" {
				src, _ = img.Attr("data-src")
			}
			if !isUsableImage(img, src) {
				return
			}
			if score := imageScore(src); score > bestScore {
				best, bestScore = src, score
			}
		})
		if best != "" {
			return normalizeImageURL(best)
		}
	}
	return ""
}

// isUsableImage rejects non-Wikimedia sources, non-image paths, and tiny UI
// icons.
func isUsableImage(img *goquery.Selection, src string) bool {
	if src == "" {
		return false
	}
	lower := strings.ToLower(src)
	if !strings.Contains(lower, "wikimedia.org") && !strings.Contains(lower, "wikipedia.org") && !strings.HasPrefix(lower, "/") {
		return false
	}
	if !hasImageExt(lower) {
		return false
	}
	for _, junk := range []string{"icon", "edit", "ooui", "sprite", "magnify", "1x1", "commons-logo", "wikimedia-button"} {
		if strings.Contains(lower, junk) {
			return false
		}
	}
	if tooSmall(img.AttrOr("width", "")) || tooSmall(img.AttrOr("height", "")) {
		return false
	}
	return true
}

func hasImageExt(lower string) bool {
	if idx := strings.IndexAny(lower, "?#"); idx >= 0 {
		lower = lower[:idx]
	}
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func tooSmall(attr string) bool {
	n := firstNumber(attr)
	return attr != "" && n > 0 && n < 40
}

// imageScore prefers poster-looking filenames, then larger renditions.
func imageScore(src string) int {
	lower := strings.ToLower(src)
	score := 0
	for _, hint := range []string{"poster", "capa", "cartel", "logotipo", "logo_"} {
		if strings.Contains(lower, hint) {
			score += 1000
		}
	}
	if m := thumbWidthRe.FindStringSubmatch(lower); m != nil {
		score += firstNumber(m[1])
	} else {
		// A non-thumbnail rendition is the full-size original.
		score += 500
	}
	return score
}

// normalizeImageURL fixes protocol-relative and site-relative sources and
// upgrades small thumbnail renditions to a 300px path.
func normalizeImageURL(src string) string {
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	} else if strings.HasPrefix(src, "/") {
		src = "https://upload.wikimedia.org" + src
	}
	if m := thumbWidthRe.FindStringSubmatch(src); m != nil && firstNumber(m[1]) < 200 {
		src = thumbWidthRe.ReplaceAllString(src, "/300px-")
	}
	return src
}
