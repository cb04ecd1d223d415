package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/companion-engine/internal/config"
	"github.com/jwebster45206/companion-engine/internal/engine"
	"github.com/jwebster45206/companion-engine/internal/handlers"
	"github.com/jwebster45206/companion-engine/internal/logger"
	"github.com/jwebster45206/companion-engine/internal/middleware"
	"github.com/jwebster45206/companion-engine/internal/services"
	"github.com/jwebster45206/companion-engine/internal/storage"
	"github.com/jwebster45206/companion-engine/pkg/composer"
	"github.com/jwebster45206/companion-engine/pkg/memory"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Companion Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"model_name", cfg.GeminiModel)

	if cfg.GeminiAPIKey == "" {
		log.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}
	llmService := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.WorldsDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	var imageService services.ImageService
	if cfg.SDBaseURL() != "" {
		imageService = services.NewSDWebUIService(cfg.SDBaseURL(), cfg.SDTimeout)
		log.Info("Image backend configured", "url", cfg.SDBaseURL(), "remote", cfg.SDUseRemote)
	}

	var speechService services.SpeechService
	if cfg.TTSURL != "" {
		speechService = services.NewTTSService(cfg.TTSURL, cfg.LLMTimeout)
		log.Info("Speech backend configured", "url", cfg.TTSURL)
	}

	mem := memory.NewManager(cfg.HistoryLimit, cfg.PruneCount, llmService, log)
	dispatcher := composer.NewDispatcher(composer.NewSingle(), composer.NewMulti(), composer.NewNPC(), log)
	eng := engine.New(store, llmService, mem, dispatcher, imageService, speechService, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log))
	mux.Handle("/v1/turn", handlers.NewTurnHandler(eng, log))
	mux.Handle("/v1/sessions", handlers.NewSessionHandler(eng, store, log))

	worldsHandler := handlers.NewWorldsHandler(store, log)
	mux.Handle("/v1/worlds", worldsHandler)
	mux.Handle("/v1/worlds/", worldsHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
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

	// Let in-flight image and speech work finish before closing storage.
	eng.Wait()

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
