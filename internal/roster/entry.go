// Package roster holds the roster reconciliation core: response normalization,
// per-source loaders, the display projector and the local mutation store.
package roster

import "strings"

// Entry is a single player on the roster.
type Entry struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Number   string `json:"number"`
}

// Field names a sortable Entry attribute.
type Field string

const (
	FieldNone     Field = ""
	FieldName     Field = "name"
	FieldPosition Field = "position"
	FieldNumber   Field = "number"
)

// ParseField maps user input onto a Field. Unknown input yields FieldNone.
func ParseField(value string) Field {
	switch Field(strings.ToLower(strings.TrimSpace(value))) {
	case FieldName:
		return FieldName
	case FieldPosition:
		return FieldPosition
	case FieldNumber:
		return FieldNumber
	default:
		return FieldNone
	}
}

func (e Entry) value(f Field) string {
	switch f {
	case FieldName:
		return e.Name
	case FieldPosition:
		return e.Position
	case FieldNumber:
		return e.Number
	default:
		return ""
	}
}

// Complete reports whether name, position and number are all non-blank.
func (e Entry) Complete() bool {
	return strings.TrimSpace(e.Name) != "" &&
		strings.TrimSpace(e.Position) != "" &&
		strings.TrimSpace(e.Number) != ""
}

// Source identifies one of the independent roster providers.
type Source string

const (
	SourceLocal    Source = "local"
	SourceDatabase Source = "database"
	SourceExternal Source = "external"
)

// ParseSource maps user input onto a Source.
func ParseSource(value string) (Source, bool) {
	switch Source(strings.ToLower(strings.TrimSpace(value))) {
	case SourceLocal:
		return SourceLocal, true
	case SourceDatabase, "db":
		return SourceDatabase, true
	case SourceExternal:
		return SourceExternal, true
	default:
		return "", false
	}
}

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	copy(out, in)
	return out
}
