package models

import "time"

// YearRange covers a telenovela's broadcast run. End is 0 while the run is
// open-ended or unknown.
type YearRange struct {
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`
}

// NovelaRecord is one telenovela in the persisted catalog. The merge/dedup
// identity is the normalized title (see similarity.NormalizeKey), not ID:
// the ID is a content hash of that key and only a same-key collision within
// one run appends a sequence suffix.
type NovelaRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Country      string    `json:"country,omitempty"`
	Broadcaster  string    `json:"broadcaster,omitempty"`
	Year         YearRange `json:"year"`
	Genre        []string  `json:"genre,omitempty"`
	Synopsis     string    `json:"synopsis,omitempty"`
	Cast         []string  `json:"cast,omitempty"`
	Episodes     int       `json:"episodes,omitempty"`
	Director     string    `json:"director,omitempty"`
	Author       string    `json:"author,omitempty"`
	WikipediaURL string    `json:"wikipediaUrl,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Scraped      time.Time `json:"scraped,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// CatalogStatistics are aggregates recomputed on every merge.
type CatalogStatistics struct {
	TotalEpisodes   int       `json:"totalEpisodes"`
	AverageEpisodes float64   `json:"averageEpisodes"`
	YearRange       YearRange `json:"yearRange"`
}

// CatalogMetadata describes the merged catalog as a whole.
type CatalogMetadata struct {
	LastUpdated  time.Time         `json:"lastUpdated"`
	TotalNovelas int               `json:"totalNovelas"`
	Countries    []string          `json:"countries"`
	Broadcasters []string          `json:"broadcasters"`
	Genres       []string          `json:"genres"`
	Statistics   CatalogStatistics `json:"statistics"`
}

// NovelaCatalog is the single durable state of the scraper pipeline. It must
// round-trip losslessly across merge cycles.
type NovelaCatalog struct {
	Metadata CatalogMetadata `json:"metadata"`
	Novelas  []NovelaRecord  `json:"novelas"`
}
