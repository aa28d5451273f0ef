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

	"github.com/JonMunkholm/SheetEdit/internal/audit"
	"github.com/JonMunkholm/SheetEdit/internal/codec"
	"github.com/JonMunkholm/SheetEdit/internal/config"
	"github.com/JonMunkholm/SheetEdit/internal/core"
	"github.com/JonMunkholm/SheetEdit/internal/logging"
	"github.com/JonMunkholm/SheetEdit/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	// Load and validate configuration; a .env file is merged when present
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"audit_db", cfg.Database.Enabled(),
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"session_ttl", cfg.Session.TTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	// The log sink always runs; the database sink joins it when configured
	var sinks audit.Multi
	sinks = append(sinks, audit.NewLogSink(nil))
	var history web.AuditReader

	if cfg.Database.Enabled() {
		pool, err := connectDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := audit.NewPostgresSink(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare audit schema", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, pg)
		history = pg
	} else {
		slog.Info("no database configured, audit trail goes to the log only")
	}

	registry := codec.NewRegistry()
	service := core.NewService(registry, sinks, core.ServiceConfig{
		MaxConcurrentDecodes: cfg.Upload.MaxConcurrent,
		DecodeWait:           cfg.Upload.MaxWaitTime,
		SessionTTL:           cfg.Session.TTL,
		MaxSessions:          cfg.Session.MaxSessions,
	})

	server := web.NewServer(web.Options{
		Config:  cfg,
		Service: service,
		Encoder: codec.Encoder{PDF: codec.PDFOptions{
			Orientation: cfg.Export.PDFOrientation,
			PageSize:    cfg.Export.PDFPageSize,
			FontSize:    float64(cfg.Export.PDFFontSize),
		}},
		Accept:  registry.Extensions(),
		History: history,
	})

	// Background jobs stop when the process shuts down
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSweeper(jobCtx, cfg.Session.SweepInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight workbook decodes finish before closing connections
		if status := service.DecodeStatus(); status.Active > 0 {
			slog.Info("waiting for workbook decodes to complete", "active", status.Active)
			if err := service.WaitForDecodes(shutdownCtx); err != nil {
				slog.Warn("decodes did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped", "open_sessions", service.SessionCount())
}

// connectDB opens and pings a connection pool for the audit store.
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
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
		slog.Info("connected to audit database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}
