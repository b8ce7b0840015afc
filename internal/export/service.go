package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"seals/api/internal/roster"
)

const team = "Manchester Seals"

// DataStore defines the interface for data access
type DataStore interface {
	List(ctx context.Context) ([]roster.Entry, error)
	ListByPosition(ctx context.Context, position string) ([]roster.Entry, error)
}

// ObjectStore stores a finished snapshot body.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (bucket string, err error)
}

// Service provides roster export functionality
type Service struct {
	store   DataStore
	objects ObjectStore
	now     func() time.Time
}

// NewService creates a new export service. objects may be nil, in which case
// Export fails with ErrStorageDisabled.
func NewService(store DataStore, objects ObjectStore) *Service {
	return &Service{store: store, objects: objects, now: func() time.Time { return time.Now().UTC() }}
}

// Export renders the roster and writes it to object storage.
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	if s.objects == nil {
		return nil, ErrStorageDisabled
	}
	if req.Format == "" {
		req.Format = FormatJSON
	}

	var (
		entries []roster.Entry
		err     error
	)
	if req.Position != "" {
		entries, err = s.store.ListByPosition(ctx, req.Position)
	} else {
		entries, err = s.store.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	now := s.now()
	body, contentType, err := render(req, entries, now)
	if err != nil {
		return nil, err
	}

	key := objectKey(req, now)
	bucket, err := s.objects.Put(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	return &Result{
		Bucket:      bucket,
		Key:         key,
		Size:        int64(len(body)),
		ContentType: contentType,
		Count:       len(entries),
	}, nil
}

func render(req Request, entries []roster.Entry, now time.Time) ([]byte, string, error) {
	switch req.Format {
	case FormatJSON:
		snapshot := Snapshot{Team: team, ExportedAt: now, Count: len(entries), Entries: entries}
		if req.Position != "" {
			snapshot.Filter = map[string]any{"position": req.Position}
		}
		body, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("marshal snapshot: %w", err)
		}
		return body, "application/json", nil
	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"id", "name", "position", "number"})
		for _, e := range entries {
			_ = w.Write([]string{e.ID, e.Name, e.Position, e.Number})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, "", fmt.Errorf("write csv: %w", err)
		}
		return buf.Bytes(), "text/csv", nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, req.Format)
	}
}

func objectKey(req Request, now time.Time) string {
	name := "roster"
	if req.Position != "" {
		name += "-" + sanitizeFilename(req.Position)
	}
	return fmt.Sprintf("roster/%s/%s-%s.%s", now.Format("2006-01-02"), name, now.Format("150405.000"), req.Format)
}

// sanitizeFilename removes characters that are invalid in object names
func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}
