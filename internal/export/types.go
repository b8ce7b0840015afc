// Package export writes roster snapshots to object storage.
package export

import (
	"errors"
	"time"

	"seals/api/internal/roster"
)

// Format represents the snapshot output format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Request contains parameters for an export operation
type Request struct {
	Format Format
	// Position limits the snapshot to one position when set.
	Position string
}

// Snapshot is the JSON document written for FormatJSON.
type Snapshot struct {
	Team       string         `json:"team"`
	ExportedAt time.Time      `json:"exportedAt"`
	Count      int            `json:"count"`
	Filter     map[string]any `json:"filter,omitempty"`
	Entries    []roster.Entry `json:"entries"`
}

// Result describes a stored snapshot
type Result struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Count       int    `json:"count"`
}

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrStorageDisabled   = errors.New("object storage not configured")
)
