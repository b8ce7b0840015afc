package roster

import (
	"context"
	"encoding/json"
	"sync"
)

// View is the roster component: the local store, one loader per source, and
// the current display query and selected source.
type View struct {
	local    *LocalStore
	loaders  map[Source]*Loader
	mu       sync.RWMutex
	query    Query
	selected Source
}

// ViewConfig wires the remote sources. A nil fetcher leaves the source
// present but failing on load.
type ViewConfig struct {
	Seed     []Entry
	Database Fetcher
	External Fetcher
	Options  []LoaderOption
}

func NewView(cfg ViewConfig) *View {
	local := NewLocalStore(cfg.Seed)
	v := &View{
		local:    local,
		query:    DefaultQuery(),
		selected: SourceLocal,
		loaders:  map[Source]*Loader{},
	}
	v.loaders[SourceLocal] = NewLoader(SourceLocal, localFetcher{store: local}, cfg.Options...)
	v.loaders[SourceDatabase] = NewLoader(SourceDatabase, cfg.Database, cfg.Options...)
	v.loaders[SourceExternal] = NewLoader(SourceExternal, cfg.External, cfg.Options...)
	return v
}

// Init performs the initial database load.
func (v *View) Init(ctx context.Context) LoadState {
	return v.LoadDatabase(ctx)
}

func (v *View) LoadDatabase(ctx context.Context) LoadState {
	return v.loaders[SourceDatabase].LoadAll(ctx)
}

func (v *View) FilterByPosition(ctx context.Context, position string) LoadState {
	return v.loaders[SourceDatabase].LoadByPosition(ctx, position)
}

func (v *View) FilterByNumber(ctx context.Context, number string) LoadState {
	return v.loaders[SourceDatabase].LoadByNumber(ctx, number)
}

// FetchExternal loads path from the external service. An empty path means
// the service's roster endpoint.
func (v *View) FetchExternal(ctx context.Context, path string) LoadState {
	return v.loaders[SourceExternal].LoadPath(ctx, path)
}

// LoadLocal runs the local list through the same loader machinery so its
// state can be inspected like the remote ones.
func (v *View) LoadLocal(ctx context.Context) LoadState {
	return v.loaders[SourceLocal].LoadAll(ctx)
}

func (v *View) State(source Source) LoadState {
	loader, ok := v.loaders[source]
	if !ok {
		return LoadState{}
	}
	return loader.State()
}

// Select chooses which list Displayed projects.
func (v *View) Select(source Source) bool {
	if _, ok := v.loaders[source]; !ok {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = source
	return true
}

func (v *View) Selected() Source {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selected
}

func (v *View) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query.SearchTerm = term
}

func (v *View) ToggleSort(key Field) Query {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = v.query.ToggleSort(key)
	return v.query
}

func (v *View) Query() Query {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.query
}

// Displayed projects the selected list through the current query. Remote
// sources contribute entries only while in PhaseSuccess.
func (v *View) Displayed() []Entry {
	v.mu.RLock()
	selected, query := v.selected, v.query
	v.mu.RUnlock()

	var base []Entry
	if selected == SourceLocal {
		base = v.local.Entries()
	} else {
		base = v.loaders[selected].State().Entries
	}
	return Project(base, query)
}

// Local exposes the mutation store backing the local source.
func (v *View) Local() *LocalStore { return v.local }

func (v *View) Add(candidate Entry) (Entry, bool) { return v.local.Add(candidate) }

func (v *View) Remove(id string) bool { return v.local.Remove(id) }

func (v *View) Update(id string, values Entry) bool { return v.local.Update(id, values) }

func (v *View) RemoveByName(name string) bool { return v.local.RemoveByName(name) }

func (v *View) UpdateByName(originalName string, values Entry) bool {
	return v.local.UpdateByName(originalName, values)
}

type localFetcher struct {
	store *LocalStore
}

// Fetch applies position and number filters as exact matches, like the
// database API does.
func (f localFetcher) Fetch(_ context.Context, req Request) ([]byte, error) {
	entries := f.store.Entries()
	filtered := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if req.Position != "" && entry.Position != req.Position {
			continue
		}
		if req.Number != "" && entry.Number != req.Number {
			continue
		}
		filtered = append(filtered, entry)
	}
	return json.Marshal(filtered)
}
