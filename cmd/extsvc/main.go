// Command extsvc runs a small sample REST service that the roster view can
// use as its external source.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seals/api/internal/config"
)

func main() {
	config.LoadEnvFiles(config.DefaultEnvFiles...)
	cfg := config.Load()

	server := &http.Server{
		Addr:              cfg.ExternalAddr,
		Handler:           newRouter(time.Now),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("External REST service listening on %s", cfg.ExternalAddr)
		for _, endpoint := range availableEndpoints {
			log.Printf("  GET %s", endpoint)
		}
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
