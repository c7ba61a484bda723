package models

// Media types a candidate match can resolve to.
const (
	MediaTypeMovie  = "movie"
	MediaTypeTV     = "tv"
	MediaTypeAnime  = "anime"
	MediaTypeManga  = "manga"
	MediaTypeNovela = "novela"
)

// Catalog source names. SourceManual marks items persisted without a
// resolved external match.
const (
	SourceTMDB   = "tmdb"
	SourceOMDB   = "omdb"
	SourceJikan  = "jikan"
	SourceNovela = "novela"
	SourceManual = "manual"
)

// SourcePriority is the declared fan-in order for candidate deduplication.
// When two sources return the same (title, year, mediaType), the one listed
// first here wins. Keep this explicit so determinism survives refactors.
var SourcePriority = []string{SourceTMDB, SourceOMDB, SourceJikan, SourceNovela}

// RawListEntry is a scraped, unresolved list item. Year is 0 when the page
// carried no parseable year.
type RawListEntry struct {
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"`
}

// CandidateMatch is a single external-catalog hit for a RawListEntry.
type CandidateMatch struct {
	Title       string  `json:"title"`
	Year        int     `json:"year,omitempty"`
	ExternalID  string  `json:"externalId"`
	MediaType   string  `json:"mediaType"`
	SourceName  string  `json:"sourceName"`
	PosterURL   string  `json:"posterUrl,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Synopsis    string  `json:"synopsis,omitempty"`
	ExternalURL string  `json:"externalUrl,omitempty"`
}
