package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade-journal-go/internal/bubbles"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/engine"
	"trade-journal-go/internal/feed"
	"trade-journal-go/internal/ledger"
	"trade-journal-go/internal/logger"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Open the local import ledger
	led, err := ledger.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open import ledger", zap.Error(err))
	}
	log.Info("Import ledger ready", zap.String("dsn", cfg.Database.DSN))

	// Annotation store client
	store := bubbles.NewClient(&cfg.Store, log)

	// Trade feed: a CSV export path takes precedence over the live API.
	var tradeFeed feed.TradeFeed
	if cfg.Sync.CSVPath != "" {
		log.Info("Using CSV trade feed", zap.String("path", cfg.Sync.CSVPath))
		tradeFeed = feed.NewCSVFeed(cfg.Sync.CSVPath, cfg.Exchange.Name, log)
	} else {
		log.Info("Using exchange trade feed", zap.String("exchange", cfg.Exchange.Name))
		tradeFeed = feed.NewExchangeFeed(&cfg.Exchange, log)
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Initialize and run the sync engine with its status API
	syncEngine := engine.New(log, &cfg, tradeFeed, store, led)

	api := engine.NewAPIServer(syncEngine, cfg.Server.Port, log)
	api.Start()

	if err := syncEngine.Run(ctx); err != nil {
		log.Error("Sync engine stopped with error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := api.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server", zap.Error(err))
	}

	log.Info("Journal daemon has been shut down.")
}
