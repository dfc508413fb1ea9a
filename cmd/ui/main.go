package main

import (
	"fmt"
	"net/http"
	"os"

	"trade-journal-go/internal/bubbles"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/ledger"
	"trade-journal-go/internal/logger"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Open the import ledger
	led, err := ledger.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open import ledger", zap.Error(err))
	}

	// Annotation store client for the overlay endpoint
	store := bubbles.NewClient(&cfg.Store, log)

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, led, store)

	// API endpoints
	mux.HandleFunc("/api/trades", apiHandler.TradesHandler)
	mux.HandleFunc("/api/syncruns", apiHandler.SyncRunsHandler)
	mux.HandleFunc("/api/overlay", apiHandler.OverlayHandler)
	mux.HandleFunc("/health", apiHandler.HealthHandler)

	// Static file serving for CSS, JS, etc.
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))

	// HTML template serving
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/templates/index.html")
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}
