package search

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"seals/api/internal/roster"
)

const idxRoster = "seals_roster"

// Meili indexes and searches roster entries in Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the roster index.
// An unreachable server is not an error; the health loop picks it up later.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxRoster,
		PrimaryKey: "id",
	}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxRoster, err)
	}

	index := m.client.Index(idxRoster)
	filterable := []interface{}{"position", "number"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("search: update filterable attrs for %s: %v", idxRoster, err)
	}
	searchable := []string{"name", "position", "number"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs for %s: %v", idxRoster, err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

func (m *Meili) Search(q Query) ([]roster.Entry, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	resp, err := m.client.Index(idxRoster).Search(q.Text, &meili.SearchRequest{Limit: limit})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch search: %w", err)
	}

	results := make([]roster.Entry, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		results = append(results, hitToEntry(hit))
	}
	return results, int(resp.EstimatedTotalHits), nil
}

func hitToEntry(hit meili.Hit) roster.Entry {
	return EntryRecord{
		ID:       decodeString(hit, "id"),
		Name:     decodeString(hit, "name"),
		Position: decodeString(hit, "position"),
		Number:   decodeString(hit, "number"),
	}.entry()
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// IndexEntry adds or updates an entry in the index.
func (m *Meili) IndexEntry(e roster.Entry) error {
	_, err := m.client.Index(idxRoster).AddDocuments([]EntryRecord{recordFromEntry(e)}, nil)
	return err
}

// DeleteEntry removes an entry from the index.
func (m *Meili) DeleteEntry(id string) error {
	_, err := m.client.Index(idxRoster).DeleteDocument(id, nil)
	return err
}

// IndexEntries bulk-indexes entries.
func (m *Meili) IndexEntries(entries []roster.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	records := make([]EntryRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, recordFromEntry(e))
	}
	_, err := m.client.Index(idxRoster).AddDocuments(records, nil)
	return err
}
