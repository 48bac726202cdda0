package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/listwise/backend/config"
	httpDelivery "github.com/listwise/backend/internal/delivery/http"
	"github.com/listwise/backend/internal/domain"
	"github.com/listwise/backend/internal/infrastructure/catalog"
	"github.com/listwise/backend/internal/infrastructure/feedback"
	"github.com/listwise/backend/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Root context ends on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.SetupLogger(cfg.Logging); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logger := slog.Default()

	logger.Info("starting listwise backend",
		"version", "1.0.0",
		"environment", cfg.Server.Environment,
		"catalog", cfg.Catalog.Type,
		"feedback", cfg.Feedback.Type,
	)

	// Initialize infrastructure dependencies
	source, err := newCatalogSource(cfg.Catalog, logger)
	if err != nil {
		return err
	}
	if closer, ok := source.(io.Closer); ok {
		defer closer.Close()
	}

	products, err := source.LoadProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("catalog loaded", "products", len(products))

	store, err := newFeedbackStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Initialize usecase layer
	engine := usecase.NewEngine(usecase.Config{
		FuzzyThreshold:         cfg.Matcher.FuzzyThreshold,
		LearnedAcceptThreshold: cfg.Matcher.LearnedAcceptThreshold,
		PromotionThreshold:     cfg.Matcher.PromotionThreshold,
		MaxBatchSize:           cfg.Matcher.MaxBatchSize,
		Workers:                cfg.Matcher.Workers,
		ExtraBrands:            cfg.Matcher.ExtraBrands,
		Logger:                 logger,
	}, products, store)

	// Hot reload for file catalogs
	if cfg.Catalog.Type == "file" && cfg.Catalog.Watch {
		watcher, err := catalog.NewWatcher(cfg.Catalog.Path, source, engine.ReplaceCatalog, logger)
		if err != nil {
			return fmt.Errorf("failed to create catalog watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start catalog watcher: %w", err)
		}
		defer watcher.Stop()
	}

	// Create HTTP handler and router
	handler := httpDelivery.NewHandler(engine)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newCatalogSource(cfg config.CatalogConfig, logger *slog.Logger) (domain.CatalogSource, error) {
	switch cfg.Type {
	case "file":
		return catalog.NewFileSource(cfg.Path), nil
	case "sqlite":
		source, err := catalog.NewSQLiteSource(cfg.Path)
		if err != nil {
			return nil, err
		}
		return source, nil
	case "http":
		return catalog.NewHTTPSource(cfg.URL, cfg.Token, logger), nil
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", cfg.Type)
	}
}

func newFeedbackStore(cfg *config.Config) (domain.FeedbackStore, error) {
	switch cfg.Feedback.Type {
	case "memory":
		return feedback.NewMemoryStore(cfg.Matcher.PromotionThreshold), nil
	case "sqlite":
		store, err := feedback.NewSQLiteStore(cfg.Feedback.Path, cfg.Matcher.PromotionThreshold)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown feedback type: %s", cfg.Feedback.Type)
	}
}
