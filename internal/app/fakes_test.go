package app

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"seals/api/internal/cache"
	"seals/api/internal/config"
	"seals/api/internal/roster"
)

type fakeStore struct {
	mu      sync.Mutex
	entries []roster.Entry
	nextID  int
	lists   int

	pingFn   func(context.Context) error
	listErr  error
	insertFn func(context.Context, roster.Entry) (roster.Entry, error)
	// afterList runs once a list read has copied its rows.
	afterList func()
}

func (f *fakeStore) Ping(ctx context.Context) error {
	if f.pingFn != nil {
		return f.pingFn(ctx)
	}
	return nil
}

func (f *fakeStore) List(context.Context) ([]roster.Entry, error) {
	out, err := f.filter(func(roster.Entry) bool { return true })
	if hook := f.afterList; hook != nil && err == nil {
		f.afterList = nil
		hook()
	}
	return out, err
}

func (f *fakeStore) ListByPosition(_ context.Context, position string) ([]roster.Entry, error) {
	return f.filter(func(e roster.Entry) bool { return e.Position == position })
}

func (f *fakeStore) ListByNumber(_ context.Context, number string) ([]roster.Entry, error) {
	return f.filter(func(e roster.Entry) bool { return e.Number == number })
}

func (f *fakeStore) Search(_ context.Context, term string, limit int) ([]roster.Entry, error) {
	term = strings.ToLower(term)
	out, err := f.filter(func(e roster.Entry) bool {
		return strings.Contains(strings.ToLower(e.Name), term)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (f *fakeStore) Insert(ctx context.Context, entry roster.Entry) (roster.Entry, error) {
	if f.insertFn != nil {
		return f.insertFn(ctx, entry)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	entry.ID = "id-" + strconv.Itoa(f.nextID)
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Seed(ctx context.Context, entries []roster.Entry) (int, error) {
	f.mu.Lock()
	empty := len(f.entries) == 0
	f.mu.Unlock()
	if !empty {
		return 0, nil
	}
	for _, e := range entries {
		if _, err := f.Insert(ctx, e); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

func (f *fakeStore) filter(keep func(roster.Entry) bool) ([]roster.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []roster.Entry
	for _, e := range f.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

type fakeCache struct {
	mu          sync.Mutex
	gen         int
	values      map[cache.Key][]roster.Entry
	invalidated int
	pingErr     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[cache.Key][]roster.Entry{}}
}

func (c *fakeCache) Get(_ context.Context, query string) ([]roster.Entry, cache.Key, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cache.Key(strconv.Itoa(c.gen) + ":" + query)
	entries, ok := c.values[key]
	if !ok {
		return nil, key, cache.ErrMiss
	}
	return entries, key, nil
}

func (c *fakeCache) Put(_ context.Context, key cache.Key, entries []roster.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = entries
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidated++
	return nil
}

func (c *fakeCache) Ping(context.Context) error { return c.pingErr }

func newTestService(fs *fakeStore, fc *fakeCache) *Service {
	cfg := config.Config{SeedOnStart: true}
	if fc == nil {
		return New(cfg, fs, nil, nil, nil)
	}
	return New(cfg, fs, fc, nil, nil)
}

func seededStore() *fakeStore {
	fs := &fakeStore{}
	_, _ = fs.Seed(context.Background(), roster.DefaultSeed())
	return fs
}
