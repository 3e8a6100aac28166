package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/carrierlink-systems/carrierlink/common/logging"
	natsclient "github.com/carrierlink-systems/carrierlink/common/messaging/nats"
	"github.com/carrierlink-systems/carrierlink/internal/broadcast"
	"github.com/carrierlink-systems/carrierlink/internal/config"
	"github.com/carrierlink-systems/carrierlink/internal/dlq"
	"github.com/carrierlink-systems/carrierlink/internal/gamelink"
	"github.com/carrierlink-systems/carrierlink/internal/handlers"
	"github.com/carrierlink-systems/carrierlink/internal/journal"
	"github.com/carrierlink-systems/carrierlink/internal/ratelimit"
	"github.com/carrierlink-systems/carrierlink/internal/reconciler"
	"github.com/carrierlink-systems/carrierlink/internal/repository"
	"github.com/carrierlink-systems/carrierlink/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("carrierlink"))
	logging.SetDefault(logger)

	slog.Info("Starting CarrierLink service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("journal_path", cfg.Journal.Path),
	)

	// Repository
	var repo repository.Repository
	if cfg.Database.Type == "postgres" {
		connString := cfg.Database.Postgres.ConnString()

		slog.Info("Connecting to PostgreSQL",
			slog.String("host", cfg.Database.Postgres.Host),
			slog.Int("port", cfg.Database.Postgres.Port),
			slog.String("database", cfg.Database.Postgres.Database),
		)

		pgRepo, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			slog.Error("Failed to connect to PostgreSQL", logging.Error(err))
			os.Exit(1)
		}
		defer pgRepo.Close()
		repo = pgRepo

		slog.Info("Running database migrations")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			slog.Error("Failed to initialize migrations", logging.Error(err))
			os.Exit(1)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			slog.Error("Failed to run migrations", logging.Error(err))
			os.Exit(1)
		}
	} else {
		slog.Warn("Using in-memory repository (development only)")
		repo = repository.NewInMemoryRepository()
	}

	// Broadcast bus
	var bus broadcast.Broadcaster = broadcast.NopBroadcaster{}
	if cfg.NATS.Enabled {
		natsCfg := natsclient.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		client, err := natsclient.NewClient(natsCfg)
		if err != nil {
			slog.Error("Failed to connect to NATS", logging.Error(err))
			os.Exit(1)
		}
		defer client.Drain()
		bus = broadcast.New(client)
		slog.Info("Connected to NATS", slog.String("url", cfg.NATS.URL))
	} else {
		slog.Warn("NATS disabled, carrier updates will not be broadcast")
	}

	// Dead letter queue for failed store writes
	var deadLetter dlq.Writer = dlq.Nop{}
	if cfg.DLQ.Enabled {
		jsCfg := natsclient.DefaultConfig()
		jsCfg.URL = cfg.DLQ.NatsURL
		jsClient, err := natsclient.NewJetStreamClient(jsCfg)
		if err != nil {
			slog.Error("Failed to connect to JetStream", logging.Error(err))
			os.Exit(1)
		}
		defer jsClient.Drain()

		if _, err := jsClient.CreateOrUpdateStream(context.Background(), natsclient.JournalDLQStream); err != nil {
			slog.Error("Failed to create DLQ stream", logging.Error(err))
			os.Exit(1)
		}
		deadLetter = dlq.NewQueue(func(ctx context.Context, subject string, data []byte) error {
			_, err := jsClient.PublishSync(ctx, subject, data)
			return err
		})
		slog.Info("Dead letter queue enabled")
	}

	// Journal pipeline
	rec := reconciler.New(repo, bus, deadLetter)
	monitor := journal.NewMonitor(cfg.Journal.Path, cfg.Journal.Pattern, rec.Process)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go func() {
		if err := monitor.Run(monitorCtx); err != nil {
			slog.Error("Journal monitor stopped", logging.Error(err))
		}
	}()

	// Rate limiter
	var limiter ratelimit.RateLimiter = ratelimit.NoOpRateLimiter{}
	if cfg.RateLimit.Enabled && cfg.Redis.Enabled {
		limiter, err = ratelimit.NewRedisRateLimiter(cfg.Redis.URL, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		if err != nil {
			slog.Error("Failed to connect to Redis", logging.Error(err))
			os.Exit(1)
		}
		defer limiter.Close()
		slog.Info("Rate limiting enabled",
			slog.Int("requests", cfg.RateLimit.Requests),
			slog.Duration("window", cfg.RateLimit.Window),
		)
	}

	// HTTP API
	carrierHandler := handlers.NewCarrierHandler(repo, gamelink.NewSimulator(0), bus)
	healthHandler := handlers.NewHealthHandler(nil)
	router := server.NewRouter(carrierHandler, healthHandler, limiter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("CarrierLink service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", logging.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	stopMonitor()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", logging.Error(err))
		os.Exit(1)
	}

	slog.Info("Server stopped gracefully")
}
