package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/toBeOfUse/patreon-post-tracker/internal/config"
	"github.com/toBeOfUse/patreon-post-tracker/internal/publisher"
	"github.com/toBeOfUse/patreon-post-tracker/internal/scheduler"
	"github.com/toBeOfUse/patreon-post-tracker/internal/server"
	"github.com/toBeOfUse/patreon-post-tracker/internal/service"
	"github.com/toBeOfUse/patreon-post-tracker/internal/source/patreon"
	"github.com/toBeOfUse/patreon-post-tracker/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Publisher is optional: no URL, no events.
	var events service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		events = rabbitMQ
	}

	postStore := postgres.NewPostStore(db)
	runStore := postgres.NewRunStore(db)
	txManager := postgres.NewTransactionManager(db)

	feed := patreon.New(patreon.Config{
		BaseURL:     cfg.Feed.BaseURL,
		AccessToken: cfg.Feed.AccessToken,
		Timeout:     cfg.Feed.Timeout,
	}, logger)

	ingest := service.NewIngestService(
		feed,
		postStore,
		runStore,
		txManager,
		events,
		logger,
		cfg.Sync,
	)
	query := service.NewQueryService(postStore, runStore, logger)

	sched := scheduler.NewScheduler(ingest, cfg.Sync.Interval, logger)
	srv := server.New(cfg.Server.Addr, query, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	logger.Info("starting post tracker",
		"interval", cfg.Sync.Interval,
		"recent_page_budget", cfg.Sync.RecentPageBudget,
		"history_page_budget", cfg.Sync.HistoryPageBudget,
	)

	err = sched.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	if err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
