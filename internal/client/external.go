package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"seals/api/internal/roster"
)

// External fetches arbitrary paths from an external REST service.
type External struct {
	getter
}

func NewExternal(baseURL string, timeout time.Duration, httpClient *http.Client) *External {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultExternalBase
	}
	return &External{getter: newGetter(baseURL, timeout, httpClient)}
}

// Fetch GETs req.Path, or the roster endpoint when no path is given.
func (c *External) Fetch(ctx context.Context, req roster.Request) ([]byte, error) {
	return c.get(ctx, NormalizePath(req.Path))
}

// NormalizePath roots a relative path at "/".
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultExternalPath
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
