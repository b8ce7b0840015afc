package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"seals/api/internal/cache"
	"seals/api/internal/config"
	"seals/api/internal/export"
	"seals/api/internal/roster"
	"seals/api/internal/search"
)

type dataStore interface {
	Ping(context.Context) error
	List(context.Context) ([]roster.Entry, error)
	ListByPosition(context.Context, string) ([]roster.Entry, error)
	ListByNumber(context.Context, string) ([]roster.Entry, error)
	Insert(context.Context, roster.Entry) (roster.Entry, error)
	Delete(context.Context, string) (bool, error)
	Search(context.Context, string, int) ([]roster.Entry, error)
	Seed(context.Context, []roster.Entry) (int, error)
}

type responseCache interface {
	Get(context.Context, string) ([]roster.Entry, cache.Key, error)
	Put(context.Context, cache.Key, []roster.Entry) error
	Invalidate(context.Context) error
	Ping(context.Context) error
}

// Service implements the database-backed roster API.
type Service struct {
	cfg      config.Config
	store    dataStore
	cache    responseCache
	search   *search.Service
	exporter *export.Service
}

// New creates a service. cache, searcher and exporter are optional.
func New(cfg config.Config, store dataStore, cache responseCache, searcher *search.Service, exporter *export.Service) *Service {
	if searcher == nil {
		searcher = search.NewService(nil, store)
	}
	return &Service{cfg: cfg, store: store, cache: cache, search: searcher, exporter: exporter}
}

// Bootstrap seeds an empty roster and pushes the roster into the search index.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.cfg.SeedOnStart {
		written, err := s.store.Seed(ctx, roster.DefaultSeed())
		if err != nil {
			return err
		}
		if written > 0 {
			log.Printf("bootstrap: seeded %d roster entries", written)
			s.invalidate(ctx)
		}
	}
	entries, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	s.search.Reindex(entries)
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// PingCache reports the cache state; ok is false when no cache is configured.
func (s *Service) PingCache(ctx context.Context) (ok bool, err error) {
	if s.cache == nil {
		return false, nil
	}
	return true, s.cache.Ping(ctx)
}

// List returns the roster filtered by req, reading through the cache. The
// cache key is resolved before the store read, so a result that races a
// write is stored under the superseded generation.
func (s *Service) List(ctx context.Context, req roster.Request) ([]roster.Entry, error) {
	query := req.String()
	var key cache.Key
	if s.cache != nil {
		entries, resolved, err := s.cache.Get(ctx, query)
		if err == nil {
			return entries, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Printf("cache: read %s: %v", query, err)
		}
		key = resolved
	}

	var (
		entries []roster.Entry
		err     error
	)
	switch {
	case req.Position != "":
		entries, err = s.store.ListByPosition(ctx, req.Position)
	case req.Number != "":
		entries, err = s.store.ListByNumber(ctx, req.Number)
	default:
		entries, err = s.store.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []roster.Entry{}
	}

	if s.cache != nil && key != "" {
		if err := s.cache.Put(ctx, key, entries); err != nil {
			log.Printf("cache: write %s: %v", query, err)
		}
	}
	return entries, nil
}

// Create stores a new entry. Entries with a blank field are rejected.
func (s *Service) Create(ctx context.Context, input roster.Entry) (roster.Entry, error) {
	input = roster.Entry{
		Name:     strings.TrimSpace(input.Name),
		Position: strings.TrimSpace(input.Position),
		Number:   strings.TrimSpace(input.Number),
	}
	if !input.Complete() {
		return roster.Entry{}, validationError("name, position and number are required")
	}
	created, err := s.store.Insert(ctx, input)
	if err != nil {
		return roster.Entry{}, err
	}
	s.invalidate(ctx)
	s.search.IndexEntry(created)
	return created, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return playerNotFound(id)
	}
	s.invalidate(ctx)
	s.search.DeleteEntry(id)
	return nil
}

func (s *Service) Search(ctx context.Context, q search.Query) search.Response {
	return s.search.Search(ctx, q)
}

func (s *Service) Export(ctx context.Context, req export.Request) (*export.Result, error) {
	if s.exporter == nil {
		return nil, errExportUnavailable
	}
	result, err := s.exporter.Export(ctx, req)
	switch {
	case errors.Is(err, export.ErrStorageDisabled):
		return nil, errExportUnavailable
	case errors.Is(err, export.ErrUnsupportedFormat):
		return nil, validationError("format must be json or csv")
	case err != nil:
		return nil, err
	}
	return result, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("cache: invalidate: %v", err)
	}
}
