package search

import (
	"context"
	"log"

	"seals/api/internal/roster"
)

const (
	BackendMeili = "meilisearch"
	BackendSQL   = "sql"
)

// Service is the facade that tries Meilisearch first and falls back to SQL.
type Service struct {
	meili    *Meili
	fallback Fallback
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, fallback Fallback) *Service {
	return &Service{meili: meili, fallback: fallback}
}

// Search tries Meilisearch if healthy, otherwise falls back to the store.
func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text, Backend: BackendMeili}
		}
		log.Printf("search: meilisearch error, falling back to sql: %v", err)
	}

	if s.fallback == nil {
		return Response{Results: []roster.Entry{}, Query: q.Text, Backend: BackendSQL}
	}
	results, err := s.fallback.Search(ctx, q.Text, q.Limit)
	if err != nil {
		log.Printf("search: sql error: %v", err)
		return Response{Results: []roster.Entry{}, Total: 0, Query: q.Text, Backend: BackendSQL}
	}
	results = nonNil(results)
	return Response{Results: results, Total: len(results), Query: q.Text, Backend: BackendSQL}
}

// IndexEntry indexes an entry (fire-and-forget to Meilisearch).
func (s *Service) IndexEntry(e roster.Entry) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexEntry(e); err != nil {
			log.Printf("search: index entry %s: %v", e.ID, err)
		}
	}()
}

// DeleteEntry removes an entry from the index (fire-and-forget).
func (s *Service) DeleteEntry(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteEntry(id); err != nil {
			log.Printf("search: delete entry %s: %v", id, err)
		}
	}()
}

// Reindex pushes entries to Meilisearch. Called at startup.
func (s *Service) Reindex(entries []roster.Entry) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	if err := s.meili.IndexEntries(entries); err != nil {
		log.Printf("search: reindex roster: %v", err)
	}
}

func nonNil(r []roster.Entry) []roster.Entry {
	if r == nil {
		return []roster.Entry{}
	}
	return r
}
