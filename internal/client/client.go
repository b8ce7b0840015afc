// Package client talks to the roster collaborators over HTTP: the
// database-backed roster API and arbitrary external REST services.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"seals/api/internal/roster"
)

const (
	DefaultTimeout      = 5 * time.Second
	DefaultExternalBase = "http://localhost:8080"
	DefaultExternalPath = "/roster"

	maxBodyBytes = 4 << 20
)

// Error is a failed collaborator call. It satisfies roster.KindedError.
type Error struct {
	Kind   roster.FailureKind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Status != 0:
		return fmt.Sprintf("GET %s: status %d: %v", e.URL, e.Status, e.Err)
	default:
		return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) FailureKind() roster.FailureKind { return e.Kind }

// getter issues GET requests with a request-level timeout.
type getter struct {
	http    *http.Client
	base    string
	timeout time.Duration
}

func newGetter(baseURL string, timeout time.Duration, httpClient *http.Client) getter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return getter{http: httpClient, base: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// get returns the body of a 2xx response. Non-2xx responses become upstream
// errors carrying the collaborator's "error" message when it sent one.
func (g getter) get(ctx context.Context, path string) ([]byte, error) {
	url := g.base + path
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: roster.FailureNetwork, URL: url, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("client: GET %s", url)
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: transportKind(err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &Error{Kind: transportKind(err), URL: url, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBodyBytes {
		return nil, &Error{Kind: roster.FailureUpstream, URL: url, Status: resp.StatusCode, Err: fmt.Errorf("response exceeds %d bytes", maxBodyBytes)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: roster.FailureUpstream, URL: url, Status: resp.StatusCode, Err: errors.New(upstreamMessage(body, resp.Status))}
	}
	return body, nil
}

func transportKind(err error) roster.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return roster.FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return roster.FailureTimeout
	}
	return roster.FailureNetwork
}

func upstreamMessage(body []byte, fallback string) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && strings.TrimSpace(envelope.Error) != "" {
		return envelope.Error
	}
	return fallback
}
