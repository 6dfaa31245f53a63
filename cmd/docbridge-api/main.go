// Package main provides the DocBridge API server entrypoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docbridge-ai/docbridge/internal/chat"
	"github.com/docbridge-ai/docbridge/internal/config"
	"github.com/docbridge-ai/docbridge/internal/docker"
	"github.com/docbridge-ai/docbridge/internal/extract"
	"github.com/docbridge-ai/docbridge/internal/llm"
	"github.com/docbridge-ai/docbridge/internal/observability"
	"github.com/docbridge-ai/docbridge/internal/pdf"
	"github.com/docbridge-ai/docbridge/internal/prompt"
	"github.com/docbridge-ai/docbridge/internal/storage"
)

func main() {
	// Load environment variables
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "docbridge-api",
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("model", cfg.Ollama.Model).
		Str("container", cfg.Runtime.ContainerName).
		Msg("Starting DocBridge API")

	// Wire up the pipeline
	store, err := storage.NewBlobStore(cfg.Storage.UploadDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open blob store")
	}

	manager, err := docker.NewManager(cfg.Runtime, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to container runtime")
	}
	defer manager.Close()

	client, err := llm.NewClient(cfg.Ollama.Host, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build model service client")
	}

	gateway := llm.NewGateway(manager, client, cfg.Ollama.Model, cfg.Ollama.GenerateTimeout, logger)
	extractor := extract.NewExtractor(pdf.NewOpener(), cfg.Extraction.MaxFileBytes, cfg.Extraction.RasterDPI, logger)
	composer := prompt.NewComposer(cfg.Prompt.MaxChars)
	chatService := chat.NewService(store, extractor, composer, gateway, logger)

	router := NewRouter(logger, cfg, gateway, store, chatService)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt or error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}

// configPath resolves the config file location: the --config flag wins,
// then the CONFIG_PATH environment variable, then the built-in defaults.
func configPath(args []string) string {
	fs := flag.NewFlagSet("docbridge-api", flag.ExitOnError)
	path := fs.String("config", "", "config file path")
	_ = fs.Parse(args)

	if *path != "" {
		return *path
	}
	return os.Getenv("CONFIG_PATH")
}
