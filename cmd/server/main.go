package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AngelCh415/pardot-insights/internal/config"
	"github.com/AngelCh415/pardot-insights/internal/engine"
	"github.com/AngelCh415/pardot-insights/internal/httpx"
	"github.com/AngelCh415/pardot-insights/internal/ingest"
	"github.com/AngelCh415/pardot-insights/internal/store"
	"github.com/AngelCh415/pardot-insights/internal/utils"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore(cfg.CacheTTL)
	in := ingest.NewIngestor(cl, st, logger, cfg)

	deps := httpx.Deps{
		Log:       logger,
		Ingestor:  in,
		Store:     st,
		Engine:    engine.New(logger),
		Telemetry: utils.NewTelemetry(),
		Settings:  engine.SettingsFrom(cfg.Analysis),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpx.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SnapshotURL != "" {
		// carga inicial, no bloquea el arranque
		go func() {
			if err := httpx.Preload(ctx, deps); err != nil {
				logger.Warn("initial ingest failed", slog.String("err", err.Error()))
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			logger.Error("shutdown error", slog.String("err", err.Error()))
		}
	}()

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
