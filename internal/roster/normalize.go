package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrMalformedPayload is returned by Normalize for payloads outside the
// accepted shapes. The accompanying sequence is always empty.
var ErrMalformedPayload = errors.New("malformed payload")

// Normalize converts a fetched JSON payload into an ordered entry sequence.
//
// Accepted shapes are a bare array of objects, an object wrapping such an
// array under "data", a single object, and an empty body, null or []. The
// returned slice is never nil.
func Normalize(raw []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Entry{}, nil
	}

	switch trimmed[0] {
	case '[':
		return normalizeArray(trimmed)
	case '{':
		var object map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &object); err != nil {
			return []Entry{}, ErrMalformedPayload
		}
		if data, ok := object["data"]; ok {
			data = bytes.TrimSpace(data)
			if len(data) > 0 && data[0] == '[' {
				return normalizeArray(data)
			}
		}
		return []Entry{entryFromObject(object)}, nil
	default:
		return []Entry{}, ErrMalformedPayload
	}
}

func normalizeArray(raw []byte) ([]Entry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []Entry{}, ErrMalformedPayload
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var object map[string]json.RawMessage
		if err := json.Unmarshal(item, &object); err != nil || object == nil {
			return []Entry{}, ErrMalformedPayload
		}
		entries = append(entries, entryFromObject(object))
	}
	return entries, nil
}

func entryFromObject(object map[string]json.RawMessage) Entry {
	id := scalarString(object["_id"])
	if id == "" {
		id = scalarString(object["id"])
	}
	return Entry{
		ID:       id,
		Name:     scalarString(object["name"]),
		Position: scalarString(object["position"]),
		Number:   scalarString(object["number"]),
	}
}

// scalarString renders strings, numbers and booleans as text; anything else
// (missing, null, objects, arrays) becomes "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return strconv.FormatBool(b)
		}
	case '{':
		// Mongo extended JSON: {"$oid": "..."}
		var oid struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(raw, &oid); err == nil {
			return oid.OID
		}
	case '[', 'n':
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}
