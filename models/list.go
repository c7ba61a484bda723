package models

import "time"

// ImportedList is the owning row created once per import.
type ImportedList struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	OwnerUserID string    `json:"ownerUserId"`
	SourceURL   string    `json:"sourceUrl,omitempty"`
	Service     string    `json:"service,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ResolvedListItem is the persisted outcome of reconciling one RawListEntry.
// Matched items carry the winning candidate's provenance; unmatched items
// carry SourceName "manual" and a synthesized external ID.
type ResolvedListItem struct {
	ID          string    `json:"id"`
	ListID      string    `json:"listId"`
	Position    int       `json:"position"`
	Title       string    `json:"title"`
	Year        int       `json:"year,omitempty"`
	ExternalID  string    `json:"externalId"`
	MediaType   string    `json:"mediaType"`
	SourceName  string    `json:"sourceName"`
	PosterURL   string    `json:"posterUrl,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Synopsis    string    `json:"synopsis,omitempty"`
	ExternalURL string    `json:"externalUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FailedImportItem records one entry that needed manual fallback.
type FailedImportItem struct {
	Title    string `json:"title"`
	Year     int    `json:"year,omitempty"`
	Reason   string `json:"reason"`
	Position int    `json:"position"`
}

// ImportResult is the structured outcome of an import. Success is true even
// when some items failed to match; callers distinguish "fully matched" from
// "completed with items needing manual review" via the counts.
type ImportResult struct {
	Success         bool               `json:"success"`
	ListID          string             `json:"listId"`
	ListName        string             `json:"listName"`
	ItemsCount      int                `json:"itemsCount"`
	MatchedCount    int                `json:"matchedCount"`
	FailedCount     int                `json:"failedCount"`
	MatchPercentage int                `json:"matchPercentage"`
	FailedItems     []FailedImportItem `json:"failedItems,omitempty"`
}

// ScrapedList is the raw output of scraping an external list page.
type ScrapedList struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Entries     []RawListEntry `json:"entries"`
}
