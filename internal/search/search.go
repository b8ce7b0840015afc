// Package search finds roster entries through Meilisearch, falling back to
// the SQL store when the index is unavailable.
package search

import (
	"context"

	"seals/api/internal/roster"
)

// Query describes a search request.
type Query struct {
	Text  string
	Limit int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []roster.Entry `json:"results"`
	Total   int            `json:"total"`
	Query   string         `json:"query"`
	Backend string         `json:"backend"`
}

// Fallback can search the roster without an index.
type Fallback interface {
	Search(ctx context.Context, term string, limit int) ([]roster.Entry, error)
}

// EntryRecord is the indexed form of a roster entry.
type EntryRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Number   string `json:"number"`
}

func recordFromEntry(e roster.Entry) EntryRecord {
	return EntryRecord{ID: e.ID, Name: e.Name, Position: e.Position, Number: e.Number}
}

func (r EntryRecord) entry() roster.Entry {
	return roster.Entry{ID: r.ID, Name: r.Name, Position: r.Position, Number: r.Number}
}
