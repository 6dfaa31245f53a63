// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/docbridge-ai/docbridge/cmd/docbridge-api/handlers"
	"github.com/docbridge-ai/docbridge/cmd/docbridge-api/middleware"
	"github.com/docbridge-ai/docbridge/internal/chat"
	"github.com/docbridge-ai/docbridge/internal/config"
	"github.com/docbridge-ai/docbridge/internal/llm"
	"github.com/docbridge-ai/docbridge/internal/observability"
	"github.com/docbridge-ai/docbridge/internal/storage"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, gateway *llm.Gateway, store *storage.BlobStore, chatService *chat.Service) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"docbridge"}`))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	serviceHandler := handlers.NewServiceHandler(logger, gateway)
	uploadHandler := handlers.NewUploadHandler(logger, store, cfg.Extraction.MaxFileBytes)
	chatHandler := handlers.NewChatHandler(logger, chatService)

	// Model pulls run far longer than any other request, so the request
	// timeout is applied per group.
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

		r.Get("/service/status", serviceHandler.Status)
		r.Post("/service/start", serviceHandler.Start)
		r.Post("/upload", uploadHandler.Upload)
		r.Post("/chat", chatHandler.Chat)
	})

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.Ollama.PullTimeout))

		r.Post("/service/pull_model", serviceHandler.PullModel)
	})

	return r
}
