// Package main is the HTTP entry point of the study helper.
//
// One process owns the in-memory dialogue sessions, the gamification
// ledgers (through the configured document backend), the event bus that
// fans answer events out to tasks, pets and teams, and the scheduler that
// sweeps idle sessions.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/xuexi-helper/study-helper/config"

	// Application layer
	"github.com/xuexi-helper/study-helper/internal/application/command"
	"github.com/xuexi-helper/study-helper/internal/application/dialogue"
	"github.com/xuexi-helper/study-helper/internal/application/eventhandler"
	"github.com/xuexi-helper/study-helper/internal/application/query"

	// Domain
	"github.com/xuexi-helper/study-helper/internal/domain/session"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"

	// Infrastructure layer
	"github.com/xuexi-helper/study-helper/internal/infrastructure/bank"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/messaging"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/document"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/postgres"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/redis"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/sqlite"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/scheduler"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/scheduler/jobs"

	// Interface layer
	httpserver "github.com/xuexi-helper/study-helper/internal/interface/http"
	"github.com/xuexi-helper/study-helper/internal/interface/http/handlers"

	// Packages
	"github.com/xuexi-helper/study-helper/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting study helper",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"storage", cfg.Storage.Backend,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORAGE BACKEND
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewRegistry(cfg.App.Version)
	store, err := openStore(ctx, cfg, log, health)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing document store...")
		if err := store.Close(); err != nil {
			log.Warn("document store close failed", "error", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	repos := document.NewRepositories(store, time.Now, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log
	busConfig.AsyncMode = cfg.Observability.EventBusAsync
	busConfig.WorkerPoolSize = cfg.Observability.EventBusWorkers
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	answerHandler := eventhandler.NewOnAnswerRecordedHandler(
		repos.Tasks, repos.Pet, repos.Team, cfg.Features, time.Now, log,
	)
	if err := eventBus.Subscribe(shared.EventAnswerRecorded, answerHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe answer handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	sessions := session.NewStore(session.StoreConfig{
		MaxHistory:   cfg.Session.MaxHistory,
		DefaultGrade: shared.Grade(cfg.Session.DefaultGrade),
		Clock:        time.Now,
		Logger:       log,
	})

	progress := query.NewGetProgressHandler(repos.Progress, time.Now)
	router, err := dialogue.NewRouter(dialogue.Dependencies{
		Sessions:   sessions,
		Questions:  bank.New(),
		Recorder:   command.NewRecordAnswerHandler(repos.Progress, eventBus, time.Now, log),
		Progress:   progress,
		Tasks:      repos.Tasks,
		Pets:       repos.Pet,
		Challenges: repos.Challenge,
		Teams:      repos.Team,
		Publisher:  eventBus,
		Features:   cfg.Features,
		Clock:      time.Now,
		NewID:      uuid.NewString,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to build dialogue router: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		schedConfig := scheduler.DefaultSchedulerConfig()
		schedConfig.Logger = log
		sched = scheduler.NewScheduler(schedConfig)

		evict := jobs.NewEvictIdleSessionsJob(sessions, eventBus, cfg.Session.IdleTTL, log)
		if err := sched.Register(evict, scheduler.NewIntervalSchedule(cfg.Scheduler.EvictInterval)); err != nil {
			return fmt.Errorf("failed to register eviction job: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.TurnTimeout = cfg.HTTP.TurnTimeout
	httpConfig.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.APIKeys = cfg.HTTP.APIKeys
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		httpConfig.EnableCORS = true
		httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	}

	httpServer, err := httpserver.NewServer(httpConfig, httpserver.Dependencies{
		Turns:         router,
		Sessions:      sessions,
		Progress:      progress,
		HealthChecker: health,
		Logger: logger.New(logger.Options{
			Output:    os.Stdout,
			Level:     logger.ParseLevel(cfg.Observability.LogLevel),
			AddCaller: cfg.App.Debug,
		}),
		Version: cfg.App.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. START SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 2)

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	if sched != nil {
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	log.Info("study helper is running",
		"http_address", httpConfig.Address(),
		"scheduler", cfg.Scheduler.Enabled,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.Error("failed to stop scheduler", "error", err)
			shutdownErr = err
		}
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		shutdownErr = err
	}

	// Event bus and store close through defer, in that order.

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// openStore connects the configured document backend and registers its
// health check. Remote backends are wrapped with retries and a circuit
// breaker when Storage.Resilient is set.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger, health *handlers.Registry) (document.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		log.Warn("using in-memory storage, progress is lost on restart")
		return document.NewMemoryStore(), nil

	case config.BackendFile:
		store, err := document.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		log.Info("file storage ready", "dir", cfg.Storage.Dir)
		return store, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		health.Add("sqlite", handlers.PingCheck(store))
		log.Info("sqlite storage ready", "path", cfg.Storage.SQLitePath)
		return store, nil

	case config.BackendPostgres:
		log.Info("connecting to database...")
		conn, err := postgres.NewConnection(ctx, postgres.Config{
			URL:               cfg.Database.URL,
			MaxConns:          int32(cfg.Database.MaxConns),
			MinConns:          int32(cfg.Database.MinConns),
			MaxConnLifetime:   cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime:   cfg.Database.ConnMaxIdleTime,
			HealthCheckPeriod: time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if cfg.Database.RunMigrations {
			if err := migrate(ctx, conn, log); err != nil {
				conn.Close()
				return nil, err
			}
		}
		health.Add("postgres", handlers.PingCheck(conn))
		return wrapRemote(cfg, postgres.NewDocumentStore(conn), "postgres", log, health), nil

	case config.BackendRedis:
		log.Info("connecting to Redis...")
		cache, err := redis.NewCache(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		health.Add("redis", handlers.PingCheck(cache))
		return wrapRemote(cfg, redis.NewDocumentStore(cache, cfg.Redis.DocumentTTL), "redis", log, health), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func wrapRemote(cfg *config.Config, store document.Store, name string, log *slog.Logger, health *handlers.Registry) document.Store {
	if !cfg.Storage.Resilient {
		return store
	}
	resilient := document.NewResilientStore(store, name, log)
	health.Add(name+"_breaker", handlers.PingCheck(resilient))
	return resilient
}

func migrate(ctx context.Context, conn *postgres.Connection, log *slog.Logger) error {
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
		return nil
	}
	applied := 0
	for _, m := range status {
		if m.IsApplied {
			applied++
		}
	}
	log.Info("migrations completed", "applied", applied, "total", len(status))
	return nil
}

// setupLogger configures structured logging: JSON in production or when
// LOG_FORMAT=json, text otherwise.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Observability.LogLevel)}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.App.Environment == config.EnvProduction {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

func slogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
