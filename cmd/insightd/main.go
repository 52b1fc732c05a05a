package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nileshgupta/stocklens/internal/cache"
	"github.com/nileshgupta/stocklens/internal/config"
	"github.com/nileshgupta/stocklens/internal/database"
	"github.com/nileshgupta/stocklens/internal/genai"
	"github.com/nileshgupta/stocklens/internal/history"
	"github.com/nileshgupta/stocklens/internal/insights"
	"github.com/nileshgupta/stocklens/internal/push"
	"github.com/nileshgupta/stocklens/internal/refresher"
	"github.com/nileshgupta/stocklens/internal/server"
	"github.com/nileshgupta/stocklens/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/insightd.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting insightd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"api_url", cfg.API.BaseURL,
		"models", len(cfg.Models),
		"history", cfg.Database.Enabled(),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect the optional insight history storage
	var store *history.Store
	var db server.Pinger
	if cfg.Database.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)

		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		store = history.New(pool, logger)
		if err := store.Init(ctx); err != nil {
			logger.Error("failed to prepare history storage", "error", err)
			os.Exit(1)
		}
		db = pool

		logger.Info("database connected")
	}

	// Create API client with the configured fallback order
	candidates := make([]genai.ModelCandidate, len(cfg.Models))
	for i, m := range cfg.Models {
		candidates[i] = genai.ModelCandidate{
			Name:             m.Name,
			StructuredOutput: m.Structured(),
		}
	}

	client := genai.NewClient(
		cfg.API.BaseURL,
		cfg.API.Key,
		candidates,
		genai.WithLogger(logger),
		genai.WithTimeout(cfg.API.Timeout),
		genai.WithRetries(cfg.API.MaxRetries, time.Second),
		genai.WithRateLimit(cfg.API.RequestsPerMinute),
	)

	// Market-status cache and push fanout
	statusCache := cache.New(cfg.Insights.StatusTTL, logger)
	hub := push.NewHub(cfg.Push.SendBuffer, logger)
	defer hub.Close()

	// Insight service
	svcOpts := []insights.Option{
		insights.WithTemperature(cfg.Insights.Temperature),
		insights.WithPublisher(hub),
		insights.WithLogger(logger),
	}
	if store != nil {
		svcOpts = append(svcOpts, insights.WithRecorder(store))
	}
	svc := insights.NewService(client, statusCache, svcOpts...)

	// Background status refresh
	if cfg.Refresher.Enabled {
		ref := refresher.New(refresher.Config{
			Interval: cfg.Refresher.Interval,
			Timeout:  cfg.Server.RequestTimeout,
		}, svc, logger)

		if err := ref.Start(ctx); err != nil {
			logger.Error("failed to start status refresher", "error", err)
			os.Exit(1)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer stopCancel()
			ref.Stop(stopCtx)
		}()
	}

	// HTTP API
	srvOpts := []server.Option{
		server.WithHub(hub),
		server.WithStatusCache(statusCache),
		server.WithRequestTimeout(cfg.Server.RequestTimeout),
		server.WithLogger(logger),
	}
	if store != nil {
		srvOpts = append(srvOpts, server.WithHistory(store))
	}
	if db != nil {
		srvOpts = append(srvOpts, server.WithDB(db))
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.New(svc, srvOpts...).Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api server listening",
			"port", cfg.Server.Port,
			"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		logger.Info("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("insightd exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("insightd stopped")
}
