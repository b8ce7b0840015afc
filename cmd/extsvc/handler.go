package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type player struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Number   string `json:"number"`
	Team     string `json:"team"`
}

type stats struct {
	Games   int    `json:"games"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	Average string `json:"average"`
}

var sampleRoster = []player{
	{Name: "John Smith", Position: "Pitcher", Number: "12", Team: "External Service"},
	{Name: "Mike Johnson", Position: "Catcher", Number: "5", Team: "External Service"},
	{Name: "Tom Wilson", Position: "First Base", Number: "3", Team: "External Service"},
	{Name: "Dave Brown", Position: "Outfield", Number: "7", Team: "External Service"},
}

var sampleStats = stats{Games: 25, Wins: 15, Losses: 10, Average: ".600"}

var availableEndpoints = []string{"/roster", "/stats", "/health", "/roster/:id"}

func newRouter(now func() time.Time) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestLog)
	router.Use(cors)

	router.Get("/roster", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sampleRoster)
	})
	router.Get("/roster/{id}", func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || index < 0 || index >= len(sampleRoster) || chi.URLParam(r, "id") != strconv.Itoa(index) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Player not found"})
			return
		}
		writeJSON(w, http.StatusOK, sampleRoster[index])
	})
	router.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sampleStats)
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": now().UTC().Format(time.RFC3339Nano),
		})
	})
	router.NotFound(notFound)
	router.MethodNotAllowed(notFound)
	return router
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type")
		header.Set("Content-Type", "application/json")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("extsvc: %s %s", r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":              "Not found",
		"availableEndpoints": availableEndpoints,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
