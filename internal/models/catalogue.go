package models

import "time"

// DocumentMetadata describes a saved manifest file found in the store.
type DocumentMetadata struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentSummary is one catalogue entry of a saved document.
type DocumentSummary struct {
	ID           string    `json:"id"`
	Path         string    `json:"path"`
	Title        string    `json:"title"`
	Checksum     string    `json:"checksum"`
	CanvasWidth  int       `json:"canvasWidth"`
	CanvasHeight int       `json:"canvasHeight"`
	Ratio        string    `json:"ratio"`
	ElementCount int       `json:"elementCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SearchResult is a full-text search hit over saved document text.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
