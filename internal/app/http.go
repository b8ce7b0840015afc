package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"seals/api/internal/export"
	"seals/api/internal/roster"
	"seals/api/internal/search"
	"seals/api/internal/store"
	"seals/api/internal/util"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	readOnly := r.Method == http.MethodGet || r.Method == http.MethodHead

	if readOnly && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if readOnly && r.URL.Path == "/api/ready" {
		s.handleReady(w, r)
		return
	}

	parts, err := splitPath(r.URL.EscapedPath())
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed path escape", nil)
		return
	}
	if len(parts) < 2 || parts[0] != "api" || parts[1] != "roster" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	parts = parts[2:]

	switch {
	case len(parts) == 0 && readOnly:
		s.handleList(w, r, roster.Request{})
	case len(parts) == 0 && r.Method == http.MethodPost:
		s.handleCreate(w, r)
	case len(parts) == 1 && parts[0] == "search" && readOnly:
		s.handleSearch(w, r)
	case len(parts) == 1 && parts[0] == "export" && r.Method == http.MethodPost:
		s.handleExport(w, r)
	case len(parts) == 2 && parts[0] == "position" && readOnly:
		s.handleList(w, r, roster.Request{Position: parts[1]})
	case len(parts) == 2 && parts[0] == "number" && readOnly:
		s.handleList(w, r, roster.Request{Number: parts[1]})
	case len(parts) == 1 && r.Method == http.MethodDelete && parts[0] != "search" && parts[0] != "export":
		s.handleDelete(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"database": map[string]any{"status": "ok"},
	}

	if err := s.service.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["database"] = map[string]any{
			"status": "error",
			"error":  err.Error(),
		}
	}

	// A broken cache degrades reads but does not make the API unready.
	if configured, err := s.service.PingCache(ctx); configured {
		if err != nil {
			checks["cache"] = map[string]any{"status": "degraded", "error": err.Error()}
		} else {
			checks["cache"] = map[string]any{"status": "ok"}
		}
	}

	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request, req roster.Request) {
	entries, err := s.service.List(r.Context(), req)
	if err != nil {
		log.Printf("roster: list %s: %v", req, err)
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}

	response := map[string]any{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	}
	switch {
	case req.Position != "":
		response["filter"] = map[string]string{"position": req.Position}
	case req.Number != "":
		response["filter"] = map[string]string{"number": req.Number}
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *HTTPServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Position string `json:"position"`
		Number   string `json:"number"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	created, err := s.service.Create(r.Context(), roster.Entry{Name: body.Name, Position: body.Position, Number: body.Number})
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": created})
}

func (s *HTTPServer) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.Delete(r.Context(), id); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		writeError(w, http.StatusBadRequest, "INVALID_QUERY", "q is required", nil)
		return
	}
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_QUERY", "limit must be a positive integer", nil)
			return
		}
		limit = min(parsed, maxSearchLimit)
	}

	result := s.service.Search(r.Context(), search.Query{Text: text, Limit: limit})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result.Results,
		"count":   result.Total,
		"query":   result.Query,
		"backend": result.Backend,
	})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Format   string `json:"format"`
		Position string `json:"position"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	result, err := s.service.Export(r.Context(), export.Request{
		Format:   export.Format(strings.ToLower(strings.TrimSpace(body.Format))),
		Position: strings.TrimSpace(body.Position),
	})
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": result})
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = util.ShortID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"success": false,
		"code":    code,
		"error":   message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// splitPath splits an escaped path and decodes each segment, so an encoded
// slash stays inside its segment.
func splitPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return nil, fmt.Errorf("decode path segment %q: %w", part, err)
		}
		parts[i] = decoded
	}
	return parts, nil
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, store.ErrClosed) {
		return http.StatusServiceUnavailable, "STORE_CLOSED", "Database unavailable", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", err.Error(), nil
}
