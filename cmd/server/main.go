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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/linecap/internal/config"
	"github.com/JonMunkholm/linecap/internal/core"
	_ "github.com/JonMunkholm/linecap/internal/core/layouts" // Register built-in layouts
	"github.com/JonMunkholm/linecap/internal/logging"
	"github.com/JonMunkholm/linecap/internal/metrics"
	"github.com/JonMunkholm/linecap/internal/sink"
	"github.com/JonMunkholm/linecap/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	if cfg.Extract.LayoutFile != "" {
		layout, err := core.LoadLayoutFile(cfg.Extract.LayoutFile)
		if err != nil {
			slog.Error("failed to load layout file", "path", cfg.Extract.LayoutFile, "error", err)
			os.Exit(1)
		}
		if err := core.AddLayout(layout); err != nil {
			slog.Error("failed to register layout file", "path", cfg.Extract.LayoutFile, "key", layout.Key, "error", err)
			os.Exit(1)
		}
	}
	if _, err := core.LookupLayout(cfg.Extract.Layout); err != nil {
		slog.Error("default layout is not registered", "layout", cfg.Extract.Layout, "error", err)
		os.Exit(1)
	}
	for _, l := range core.Layouts() {
		slog.Debug("layout registered", "key", l.Key, "fields", len(l.Fields))
	}

	ctx := context.Background()

	var pg *sink.Postgres
	if cfg.HasDatabase() {
		pool, err := connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg = sink.NewPostgres(pool, cfg.Database.Table)
		if cfg.Database.EnsureSchema {
			if err := pg.EnsureSchema(ctx); err != nil {
				slog.Error("failed to create records table", "error", err)
				os.Exit(1)
			}
		}
	}

	output, closeOutput, err := sink.Build(ctx, cfg.Output, pg)
	if err != nil {
		slog.Error("failed to configure outputs", "error", err)
		os.Exit(1)
	}
	defer closeOutput()
	if output != nil {
		slog.Info("outputs configured", "sink", output.Name())
	}

	limiter := core.NewRunLimiter(cfg.Extract.MaxConcurrent, cfg.Extract.MaxWaitTime)
	m := metrics.New()
	m.TrackLimiter(limiter)

	service := core.NewService(
		core.WithRunLimiter(limiter),
		core.WithObserver(m),
	)

	opts := []web.Option{web.WithMetrics(m)}
	if output != nil {
		opts = append(opts, web.WithSink(output))
	}
	server := web.NewServer(service, cfg, opts...)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for extractions to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("extractions did not complete in time", "error", err)
			} else {
				slog.Info("all extractions completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// connect opens and pings a pool configured from cfg.
func connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
