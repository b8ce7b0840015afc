package util

import (
	"strings"

	"github.com/google/uuid"
)

func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// ShortID is a compact random id for request correlation.
func ShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
