package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiraleos/wodcoach/internal/api"
	"github.com/kiraleos/wodcoach/internal/config"
	"github.com/kiraleos/wodcoach/internal/core"
	"github.com/kiraleos/wodcoach/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	debug := config.AppConfig.LogLevel == "DEBUG"
	if debug {
		log.Println("Service starting in DEBUG mode")
	}

	ctx := context.Background()

	// Initialize workout store
	dbStore, err := store.Open(ctx, config.AppConfig.Store)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()
	log.Printf("Using %s workout store", config.AppConfig.Store.Backend)

	// Prompt templates are created with defaults on first use
	promptFile := core.NewPromptFile(config.AppConfig.PromptsFile)
	if _, err := promptFile.Load(); err != nil {
		log.Fatalf("Failed to load prompt templates: %v", err)
	}
	log.Printf("Using prompt templates from %s", promptFile.Path())

	// Initialize LLM service
	provider, err := core.NewProvider(ctx, config.AppConfig.LLM)
	if err != nil {
		log.Fatalf("Failed to create LLM provider: %v", err)
	}
	llmService := core.NewLLMService(provider)
	defer llmService.Close()

	workoutService := core.NewWorkoutService(dbStore, promptFile, llmService, debug)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(workoutService, config.AppConfig.SessionSecret)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // suggestions wait on the model
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
