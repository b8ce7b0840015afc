package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"seals/api/internal/app"
	"seals/api/internal/cache"
	"seals/api/internal/config"
	"seals/api/internal/export"
	"seals/api/internal/search"
	"seals/api/internal/store"
)

func main() {
	for _, file := range config.LoadEnvFiles(config.DefaultEnvFiles...) {
		log.Printf("config: loaded %s", file)
	}
	cfg := config.Load()
	ctx := context.Background()

	handle := store.NewHandle(cfg.StoreDriver, cfg.DatabaseURL, cfg.MigrationsDir)
	defer handle.Close()
	if _, err := handle.DB(ctx); err != nil {
		// The handle retries on the next request; the API still starts.
		log.Printf("WARNING: database not ready: %v", err)
	}
	rosterStore := store.NewRosterStore(handle)

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, rosterStore)

	var exportService *export.Service
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		objects, err := export.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Printf("WARNING: object storage unavailable, export disabled: %v", err)
		} else {
			exportService = export.NewService(rosterStore, objects)
		}
	}

	var service *app.Service
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for roster response cache (ttl %s)", cfg.CacheTTL)
		responseCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer responseCache.Close()
		service = app.New(cfg, rosterStore, responseCache, searchService, exportService)
	} else {
		service = app.New(cfg, rosterStore, nil, searchService, exportService)
	}
	if err := service.Bootstrap(ctx); err != nil {
		log.Printf("WARNING: bootstrap error (will retry on next restart): %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Seals roster API listening on %s (%s)", cfg.Addr, cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
