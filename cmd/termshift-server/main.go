package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"termshift/internal/api"
	"termshift/internal/config"
	"termshift/internal/domain"
	"termshift/internal/service/schedules"
	"termshift/internal/service/transitions"
	"termshift/internal/store/postgres"
	"termshift/internal/trigger"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "termshift-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "termshift-server"),
	)
	slog.SetDefault(log)

	loc := domain.LocationFromSettings(cfg.TimezoneName, cfg.TimezoneOffset)
	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("log_level", cfg.LogLevel),
		slog.String("timezone", loc.String()),
		slog.Duration("tick_interval", cfg.TickInterval),
	)

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	blobs := postgres.NewBlobRepo(db)
	content := postgres.NewContentRepo(db)

	resolver := transitions.NewResolver(content, loc)
	engine := transitions.NewEngine(content, cfg.TransitionBuffer, loc)

	var orch *transitions.Orchestrator
	registrar := trigger.NewCronRegistrar(func(ctx context.Context) {
		if err := orch.ProcessAll(ctx); err != nil {
			log.Error("scheduled run failed", slog.Any("err", err))
		}
	}, log)

	scheduleSvc := schedules.NewService(blobs, registrar, cfg.TickInterval, log)
	orch = transitions.NewOrchestrator(scheduleSvc, resolver, engine, content, content, log)

	// Re-arm at boot when schedules already exist; the store only arms
	// on mutation.
	bootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	existing, err := scheduleSvc.List(bootCtx)
	cancel()
	if err != nil {
		log.Error("initial schedule load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if len(existing) > 0 {
		if err := registrar.Arm(cfg.TickInterval); err != nil {
			log.Warn("failed to arm periodic trigger", slog.Any("err", err))
		}
	}
	registrar.Start()
	defer registrar.Stop()

	router := api.NewRouter(scheduleSvc, orch, log)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr), slog.Int("schedules", len(existing)))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, server, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func shutdown(log *slog.Logger, s *http.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown timed out; forcing close", slog.Any("err", err))
		_ = s.Close()
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
