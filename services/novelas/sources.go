// Package novelas scrapes Wikipedia telenovela list pages into a persisted
// JSON catalog: per-broadcaster row parsing, dedup, detail enrichment, and an
// idempotent fill-empty-only merge.
package novelas

// SourceType selects the row-parsing strategy for a list page.
type SourceType string

const (
	SourceTypeGlobo    SourceType = "globo"
	SourceTypeSBT      SourceType = "sbt"
	SourceTypeRecord   SourceType = "record"
	SourceTypeTelevisa SourceType = "televisa"
	SourceTypeGeneric  SourceType = "generic"
)

// Source is one Wikipedia list page to crawl.
type Source struct {
	Name        string
	Country     string
	Broadcaster string
	Type        SourceType
	URL         string
}

// Sources returns the crawl targets in fetch order.
func Sources() []Source {
	return []Source{
		{
			Name:        "Telenovelas da TV Globo",
			Country:     "Brazil",
			Broadcaster: "TV Globo",
			Type:        SourceTypeGlobo,
			URL:         "https://pt.wikipedia.org/wiki/Lista_de_telenovelas_da_TV_Globo",
		},
		{
			Name:        "Telenovelas do SBT",
			Country:     "Brazil",
			Broadcaster: "SBT",
			Type:        SourceTypeSBT,
			URL:         "https://pt.wikipedia.org/wiki/Lista_de_telenovelas_do_SBT",
		},
		{
			Name:        "Telenovelas da RecordTV",
			Country:     "Brazil",
			Broadcaster: "RecordTV",
			Type:        SourceTypeRecord,
			URL:         "https://pt.wikipedia.org/wiki/Lista_de_telenovelas_da_RecordTV",
		},
		{
			Name:        "Telenovelas de Televisa",
			Country:     "Mexico",
			Broadcaster: "Televisa",
			Type:        SourceTypeTelevisa,
			URL:         "https://es.wikipedia.org/wiki/Anexo:Telenovelas_de_Televisa",
		},
		{
			Name:        "Lists of telenovelas",
			Country:     "",
			Broadcaster: "",
			Type:        SourceTypeGeneric,
			URL:         "https://en.wikipedia.org/wiki/Category:Lists_of_telenovelas",
		},
	}
}

// FilterSources keeps only sources for the given countries. An empty filter
// keeps everything.
func FilterSources(sources []Source, countries []string) []Source {
	if len(countries) == 0 {
		return sources
	}
	want := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		want[normalizeCountry(c)] = struct{}{}
	}
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if _, ok := want[normalizeCountry(s.Country)]; ok {
			out = append(out, s)
		}
	}
	return out
}

func normalizeCountry(c string) string {
	switch c {
	case "br", "BR", "brazil", "Brazil", "brasil", "Brasil":
		return "Brazil"
	case "mx", "MX", "mexico", "Mexico", "méxico", "México":
		return "Mexico"
	}
	return c
}
