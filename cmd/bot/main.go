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

	"github.com/catops/cat-content-bot/internal/analyzer"
	"github.com/catops/cat-content-bot/internal/archive"
	"github.com/catops/cat-content-bot/internal/config"
	"github.com/catops/cat-content-bot/internal/gemini"
	"github.com/catops/cat-content-bot/internal/notifications"
	"github.com/catops/cat-content-bot/internal/platforms"
	"github.com/catops/cat-content-bot/internal/posting"
	"github.com/catops/cat-content-bot/internal/scheduler"
	"github.com/catops/cat-content-bot/internal/store"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Cat Content Bot")

	// Initialize the analysis store
	db, err := store.New(cfg.DatabasePath)
	if err != nil {
		logrus.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize platform publishers. Unconfigured platforms stay
	// registered and fail their own slot at posting time.
	orchestrator := posting.NewOrchestrator(db,
		platforms.NewInstagramPublisher(cfg.InstagramUsername, cfg.InstagramPassword),
		platforms.NewTwitterPublisher(cfg.TwitterAPIKey, cfg.TwitterAPISecret, cfg.TwitterAccessToken, cfg.TwitterAccessSecret),
		platforms.NewFacebookPublisher(cfg.FacebookAccessToken, cfg.FacebookPageID),
		platforms.NewTikTokPublisher(cfg.TikTokAccessToken),
	)

	// Initialize the analysis pipeline
	model := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	analyzerService := analyzer.NewService(model, db, cfg.FallbackHashtags)

	// Initialize report notifications when a channel is configured
	var notifier scheduler.Notifier
	notificationService := notifications.NewService(cfg)
	if notificationService.IsConfigured() {
		notifier = notificationService
	}

	// Initialize the optional offsite backup archive
	var backupArchive scheduler.Archive
	if cfg.StorageAccount != "" {
		a, err := archive.NewAzureArchive(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Errorf("Offsite backup archive unavailable, continuing with local backups only: %v", err)
		} else {
			backupArchive = a
		}
	}

	// Initialize and start the scheduler
	schedulerService := scheduler.NewService(cfg, db, orchestrator, notifier, backupArchive)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up the HTTP trigger surface
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/api/analyze", analyzeHandler(analyzerService)).Methods("POST")
	router.HandleFunc("/api/post", postHandler(db, orchestrator)).Methods("POST")
	router.HandleFunc("/api/schedule", scheduleHandler(db)).Methods("POST")
	router.HandleFunc("/api/history", historyHandler(db)).Methods("GET")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // analyze and post calls wait on slow upstreams
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}
