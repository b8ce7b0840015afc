package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"seals/api/internal/roster"
)

func TestRosterAPIPaths(t *testing.T) {
	c := NewRosterAPI("http://example.test/", 0, nil)
	cases := map[string]roster.Request{
		"/api/roster":                       {},
		"/api/roster/position/First%20Base": {Position: "First Base"},
		"/api/roster/number/12":             {Number: "12"},
	}
	for want, req := range cases {
		if got := c.Path(req); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestRosterAPIFetch(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"_id":"1","name":"A","position":"Pitcher","number":"1"}],"count":1,"filter":{"position":"Pitcher"}}`))
	}))
	defer server.Close()

	body, err := NewRosterAPI(server.URL, time.Second, server.Client()).Fetch(context.Background(), roster.Request{Position: "Pitcher"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/api/roster/position/Pitcher" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	entries, err := roster.Normalize(body)
	if err != nil || len(entries) != 1 || entries[0].ID != "1" {
		t.Fatalf("unexpected entries %+v (%v)", entries, err)
	}
}

func TestRosterAPIUpstreamErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"server error", http.StatusInternalServerError, `{"success":false,"error":"db down"}`, "db down"},
		{"success false on 200", http.StatusOK, `{"success":false,"error":"bad filter"}`, "bad filter"},
		{"plain 404", http.StatusNotFound, `not json`, "404 Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := NewRosterAPI(server.URL, time.Second, server.Client()).Fetch(context.Background(), roster.Request{})
			var clientErr *Error
			if !errors.As(err, &clientErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if clientErr.Kind != roster.FailureUpstream {
				t.Fatalf("expected upstream kind, got %s", clientErr.Kind)
			}
			if clientErr.Err.Error() != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, clientErr.Err.Error())
			}
		})
	}
}

func TestExternalTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewExternal(server.URL, 20*time.Millisecond, server.Client()).Fetch(context.Background(), roster.Request{})
	var clientErr *Error
	if !errors.As(err, &clientErr) || clientErr.Kind != roster.FailureTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestExternalNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewExternal(url, time.Second, nil).Fetch(context.Background(), roster.Request{Path: "roster"})
	var clientErr *Error
	if !errors.As(err, &clientErr) || clientErr.Kind != roster.FailureNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestOversizeBodyIsUpstreamFailure(t *testing.T) {
	payload := "[" + strings.Repeat(" ", maxBodyBytes) + "]"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	_, err := NewExternal(server.URL, 5*time.Second, server.Client()).Fetch(context.Background(), roster.Request{})
	var clientErr *Error
	if !errors.As(err, &clientErr) || clientErr.Kind != roster.FailureUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected size limit in message, got %v", err)
	}
}

func TestExternalPathNormalization(t *testing.T) {
	cases := map[string]string{
		"":          "/roster",
		"roster":    "/roster",
		"/stats":    "/stats",
		" roster/1": "/roster/1",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[{"name":"John Smith","position":"Pitcher","number":"12","team":"External Service"}]`))
	}))
	defer server.Close()

	loader := roster.NewLoader(roster.SourceExternal, NewExternal(server.URL, time.Second, server.Client()), roster.WithLogf(nil))
	state := loader.LoadPath(context.Background(), "roster")
	if gotPath != "/roster" {
		t.Fatalf("expected relative path rooted, got %s", gotPath)
	}
	if state.Phase != roster.PhaseSuccess || len(state.Entries) != 1 {
		t.Fatalf("unexpected state %+v", state)
	}
}
