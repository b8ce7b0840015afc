package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seals/api/internal/client"
	"seals/api/internal/roster"
)

func fixedNow() time.Time { return time.Date(2026, 5, 2, 19, 5, 0, 0, time.UTC) }

func get(t *testing.T, handler http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	var body map[string]any
	if rr.Body.Len() > 0 && rr.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return rr, body
}

func TestRosterEndpoint(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(fixedNow).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/roster", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var players []player
	if err := json.Unmarshal(rr.Body.Bytes(), &players); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(players) != 4 || players[0].Name != "John Smith" {
		t.Fatalf("unexpected roster %+v", players)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

func TestPlayerByIndex(t *testing.T) {
	handler := newRouter(fixedNow)

	rr, body := get(t, handler, http.MethodGet, "/roster/1")
	if rr.Code != http.StatusOK || body["name"] != "Mike Johnson" {
		t.Fatalf("unexpected response %d %v", rr.Code, body)
	}

	for _, id := range []string{"4", "-1", "abc", "01"} {
		rr, body := get(t, handler, http.MethodGet, "/roster/"+id)
		if rr.Code != http.StatusNotFound || body["error"] != "Player not found" {
			t.Errorf("id %s: expected player 404, got %d %v", id, rr.Code, body)
		}
	}
}

func TestStatsAndHealth(t *testing.T) {
	handler := newRouter(fixedNow)

	_, statsBody := get(t, handler, http.MethodGet, "/stats")
	if statsBody["wins"] != float64(15) || statsBody["average"] != ".600" {
		t.Fatalf("unexpected stats %v", statsBody)
	}

	_, health := get(t, handler, http.MethodGet, "/health")
	if health["status"] != "healthy" || health["timestamp"] != "2026-05-02T19:05:00Z" {
		t.Fatalf("unexpected health %v", health)
	}
}

func TestUnknownEndpoint(t *testing.T) {
	handler := newRouter(fixedNow)
	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/players"},
		{http.MethodPost, "/roster"},
	} {
		rr, body := get(t, handler, tc.method, tc.target)
		if rr.Code != http.StatusNotFound || body["error"] != "Not found" {
			t.Fatalf("%s %s: unexpected response %d %v", tc.method, tc.target, rr.Code, body)
		}
		if endpoints, ok := body["availableEndpoints"].([]any); !ok || len(endpoints) != 4 {
			t.Fatalf("expected endpoint listing, got %v", body["availableEndpoints"])
		}
	}
}

func TestPreflight(t *testing.T) {
	rr, _ := get(t, newRouter(fixedNow), http.MethodOptions, "/roster")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestViewReadsExternalService(t *testing.T) {
	srv := httptest.NewServer(newRouter(fixedNow))
	defer srv.Close()

	view := roster.NewView(roster.ViewConfig{
		External: client.NewExternal(srv.URL, time.Second, srv.Client()),
		Options:  []roster.LoaderOption{roster.WithLogf(nil)},
	})

	state := view.FetchExternal(context.Background(), "roster")
	if state.Phase != roster.PhaseSuccess || len(state.Entries) != 4 {
		t.Fatalf("unexpected state %+v", state)
	}

	state = view.FetchExternal(context.Background(), "/roster/2")
	if state.Phase != roster.PhaseSuccess || len(state.Entries) != 1 || state.Entries[0].Name != "Tom Wilson" {
		t.Fatalf("expected single wrapped player, got %+v", state)
	}

	state = view.FetchExternal(context.Background(), "/roster/9")
	if state.Phase != roster.PhaseFailed || state.Failure.Kind != roster.FailureUpstream || state.Failure.Reason == "" {
		t.Fatalf("expected upstream failure, got %+v", state)
	}
}
