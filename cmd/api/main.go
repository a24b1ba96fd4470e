package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/wildlight/questline/internal/config"
	"github.com/wildlight/questline/internal/handlers"
	"github.com/wildlight/questline/internal/loader"
	"github.com/wildlight/questline/internal/logger"
	"github.com/wildlight/questline/internal/middleware"
	"github.com/wildlight/questline/internal/services"
	relayevents "github.com/wildlight/questline/internal/services/events"
	"github.com/wildlight/questline/internal/storage"
	"github.com/wildlight/questline/pkg/achieve"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Questline API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"content_dir", cfg.ContentDir)

	pack, err := loader.LoadDir(cfg.ContentDir)
	if err != nil {
		log.Error("Failed to load content packs", "error", err)
		os.Exit(1)
	}
	log.Info("Content loaded",
		"pack", pack.Name,
		"quests", len(pack.Quests),
		"dialogues", len(pack.Dialogues))

	store := storage.NewRedisStore(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	relay := relayevents.NewRelay(store.Client(), log)
	achieveStores := func(profileKey string) achieve.Store {
		return store.ForProfile(profileKey)
	}
	manager := services.NewManager(store, store, achieveStores, relay, pack, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	sessionHandler := handlers.NewSessionHandler(manager, log)
	mux.Handle("/v1/sessions", sessionHandler)

	actionHandler := handlers.NewActionHandler(manager, log)
	eventsHandler := handlers.NewEventsHandler(relay, log)
	mux.HandleFunc("/v1/sessions/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimRight(r.URL.Path, "/")
		switch {
		case strings.HasSuffix(path, "/actions"):
			actionHandler.ServeHTTP(w, r)
		case strings.HasSuffix(path, "/events"):
			eventsHandler.ServeHTTP(w, r)
		default:
			sessionHandler.ServeHTTP(w, r)
		}
	})

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout omitted so the SSE stream is not cut off.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
