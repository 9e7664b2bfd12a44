package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/statusbridge/internal/api"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/config"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/database"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/reconcile"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/statuspage"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Statusbridge API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &api.Dependencies{
		WebhookToken: cfg.WebhookToken,
	}

	// Store selection: Postgres when configured, in-memory otherwise.
	var incidentStore store.IncidentStore
	if cfg.DatabaseURL != "" {
		sqlDB, err := database.NewPool(database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		migrator, err := database.NewMigrator(sqlDB, "statusbridge")
		if err != nil {
			return fmt.Errorf("failed to create migrator: %w", err)
		}
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if err := migrator.Close(); err != nil {
			logger.Warn("failed to close migrator", slog.Any("error", err))
		}

		pool, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		incidentStore = store.NewPostgresStore(pool)
		deps.DB = pool
		logger.Info("using postgres incident store")
	} else {
		incidentStore = store.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, incident state is kept in memory and lost on restart")
	}

	client := statuspage.NewClient(statuspage.Config{
		BaseURL: cfg.StatuspageBaseURL,
		APIKey:  cfg.StatuspageAPIKey,
		Timeout: cfg.RemoteTimeout,
	})

	engine := reconcile.NewEngine(incidentStore, client, logger, reconcile.Config{
		SkewTolerance: cfg.StalenessTolerance,
		MaxAttempts:   cfg.CASRetryCount,
		TitleTemplate: cfg.TitleTemplate,
		BodyTemplate:  cfg.BodyTemplate,
	})
	deps.Reconciler = engine

	janitor := reconcile.NewJanitor(incidentStore, logger, cfg.JanitorInterval, cfg.ResolvedRetention)
	janitorCtx, cancelJanitor := context.WithCancel(context.Background())
	defer cancelJanitor()
	go janitor.Run(janitorCtx)

	router := api.NewRouter(logger, deps)
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	cancelJanitor()
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
