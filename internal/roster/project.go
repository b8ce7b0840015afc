package roster

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Query is the search and sort applied at read time.
type Query struct {
	SearchTerm string `json:"searchTerm"`
	SortKey    Field  `json:"sortKey,omitempty"`
	Ascending  bool   `json:"sortAscending"`
}

// DefaultQuery matches everything and leaves insertion order alone.
func DefaultQuery() Query {
	return Query{Ascending: true}
}

// ToggleSort flips the direction when key is already the sort key and
// otherwise selects key ascending.
func (q Query) ToggleSort(key Field) Query {
	if key == FieldNone {
		return q
	}
	if q.SortKey == key {
		q.Ascending = !q.Ascending
		return q
	}
	q.SortKey = key
	q.Ascending = true
	return q
}

// fold lower-cases s. A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Project returns the visible entries for base under q. base is never
// modified and the result is always a fresh slice.
func Project(base []Entry, q Query) []Entry {
	list := make([]Entry, 0, len(base))
	term := fold(strings.TrimSpace(q.SearchTerm))
	for _, entry := range base {
		if term == "" || matches(entry, term) {
			list = append(list, entry)
		}
	}

	if q.SortKey != FieldNone {
		key := q.SortKey
		asc := q.Ascending
		sort.SliceStable(list, func(i, j int) bool {
			a := fold(list[i].value(key))
			b := fold(list[j].value(key))
			if asc {
				return a < b
			}
			return a > b
		})
	}
	return list
}

func matches(entry Entry, term string) bool {
	return strings.Contains(fold(entry.Name), term) ||
		strings.Contains(fold(entry.Position), term) ||
		strings.Contains(fold(entry.Number), term)
}
