package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"seals/api/internal/roster"
)

// RosterAPI fetches from the database-backed roster API.
type RosterAPI struct {
	getter
}

func NewRosterAPI(baseURL string, timeout time.Duration, httpClient *http.Client) *RosterAPI {
	return &RosterAPI{getter: newGetter(baseURL, timeout, httpClient)}
}

// Path returns the endpoint path for req.
func (c *RosterAPI) Path(req roster.Request) string {
	switch {
	case req.Position != "":
		return "/api/roster/position/" + url.PathEscape(req.Position)
	case req.Number != "":
		return "/api/roster/number/" + url.PathEscape(req.Number)
	default:
		return "/api/roster"
	}
}

// Fetch returns the raw envelope. A body whose success member is false is
// reported as an upstream failure even on a 2xx status.
func (c *RosterAPI) Fetch(ctx context.Context, req roster.Request) ([]byte, error) {
	path := c.Path(req)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Success != nil && !*envelope.Success {
		message := envelope.Error
		if message == "" {
			message = "request unsuccessful"
		}
		return nil, &Error{Kind: roster.FailureUpstream, URL: c.base + path, Err: errors.New(message)}
	}
	return body, nil
}
