package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/streambox/streambox/internal/api"
	"github.com/streambox/streambox/internal/config"
	"github.com/streambox/streambox/internal/models"
	"github.com/streambox/streambox/internal/scheduler"
	"github.com/streambox/streambox/internal/services/caption"
	"github.com/streambox/streambox/internal/services/catalog"
	"github.com/streambox/streambox/internal/services/enrich"
	"github.com/streambox/streambox/internal/session"
	"github.com/streambox/streambox/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Streambox")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Load sources and blocklist
	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	logger.WithField("video_sources", len(sources.VideoSources)).Info("Sources loaded")

	blocklist, err := utils.LoadBlocklist(cfg.BlocklistFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load blocklist, continuing without it")
		blocklist = &utils.Blocklist{}
	} else {
		logger.Info("Blocklist loaded")
	}

	// 5. Initialize services
	timeout := time.Duration(cfg.CatalogTimeoutSec) * time.Second

	catalogClient := catalog.NewClient(timeout, logger)
	logger.Info("Catalog client initialized")

	captionClient := caption.NewClient(timeout, logger)
	captionFetcher := caption.NewFetcher(sources.CaptionSources, captionClient, blocklist, logger)
	logger.WithField("caption_sources", len(sources.CaptionSources)).Info("Caption fetcher initialized")

	enrichClient := enrich.NewClient(cfg.EnrichURL, timeout, logger)
	if enrichClient.Enabled() {
		logger.Info("Cast enrichment enabled")
	}

	// 6. Initialize session orchestration
	loader := session.NewLoader(sources, catalogClient, captionFetcher, enrichClient, db, logger)
	manager := session.NewManager(loader, captionFetcher, db, cfg.BlockAdsDefault, logger)
	defer manager.Close()
	logger.Info("Session manager initialized")

	// 7. Initialize scheduler
	sched := scheduler.NewScheduler(db, cfg.RetentionDays, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 8. Initialize HTTP server
	server := api.NewServer(cfg, db, manager, catalogClient, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 9. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Streambox is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Streambox stopped")
	return nil
}
