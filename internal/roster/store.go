package roster

import (
	"slices"
	"sync"

	"seals/api/internal/util"
)

// DefaultSeed is the static roster the local source starts from.
func DefaultSeed() []Entry {
	return []Entry{
		{Name: "Joe Hanily", Position: "Manager", Number: "20"},
		{Name: "Rick Carusone", Position: "Pitcher", Number: "17"},
		{Name: "Tony Delvecchio", Position: "Catcher", Number: "8"},
		{Name: "Sal Mancuso", Position: "First Base", Number: "24"},
		{Name: "Vinny Russo", Position: "Shortstop", Number: "2"},
		{Name: "Pete Kowalski", Position: "Outfield", Number: "31"},
	}
}

// LocalStore is the locally mutable roster. Entries keep insertion order;
// every entry carries an ID assigned when it entered the store.
//
// Remove and Update address entries by ID. RemoveByName and UpdateByName
// match the first entry with the given name and exist for callers that only
// know names; they cannot tell apart players sharing a name.
type LocalStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewLocalStore(seed []Entry) *LocalStore {
	entries := make([]Entry, 0, len(seed))
	for _, entry := range seed {
		if entry.ID == "" {
			entry.ID = util.NewID("local")
		}
		entries = append(entries, entry)
	}
	return &LocalStore{entries: entries}
}

// Entries returns a snapshot in insertion order.
func (s *LocalStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries)
}

func (s *LocalStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Add appends candidate under a fresh ID when all fields are non-blank.
func (s *LocalStore) Add(candidate Entry) (Entry, bool) {
	if !candidate.Complete() {
		return Entry{}, false
	}
	candidate.ID = util.NewID("local")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, candidate)
	return candidate, true
}

func (s *LocalStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeAt(s.indexWhere(func(e Entry) bool { return e.ID == id }))
}

func (s *LocalStore) RemoveByName(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeAt(s.indexWhere(func(e Entry) bool { return e.Name == name }))
}

// Update replaces the entry with the given ID in place. The ID is kept.
func (s *LocalStore) Update(id string, values Entry) bool {
	if !values.Complete() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceAt(s.indexWhere(func(e Entry) bool { return e.ID == id }), values)
}

func (s *LocalStore) UpdateByName(originalName string, values Entry) bool {
	if !values.Complete() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceAt(s.indexWhere(func(e Entry) bool { return e.Name == originalName }), values)
}

func (s *LocalStore) indexWhere(match func(Entry) bool) int {
	for i, entry := range s.entries {
		if match(entry) {
			return i
		}
	}
	return -1
}

func (s *LocalStore) removeAt(index int) bool {
	if index < 0 {
		return false
	}
	s.entries = slices.Delete(s.entries, index, index+1)
	return true
}

func (s *LocalStore) replaceAt(index int, values Entry) bool {
	if index < 0 {
		return false
	}
	values.ID = s.entries[index].ID
	s.entries[index] = values
	return true
}
