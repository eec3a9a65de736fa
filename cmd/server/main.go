package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/imgdash/internal/config"
	"github.com/JonMunkholm/imgdash/internal/core"
	"github.com/JonMunkholm/imgdash/internal/logging"
	"github.com/JonMunkholm/imgdash/internal/preview"
	"github.com/JonMunkholm/imgdash/internal/web"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"max_file_size", cfg.Upload.MaxFileSize,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"mock_delay", cfg.Mock.Delay,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	previews := preview.NewTable()
	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	processor := &core.LimitedProcessor{
		Next:    core.NewMockProcessor(cfg.Mock.Delay, cfg.Mock.ResultLocator),
		Limiter: limiter,
	}

	server := web.NewServer(cfg, web.Deps{
		Previews:  previews,
		Limiter:   limiter,
		Processor: processor,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)
	g.Go(func() error {
		return server.RunBackground(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := limiter.ActiveCount(); active > 0 {
			slog.Info("waiting for processing to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("processing did not complete in time", "error", err)
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped", "previews_live", previews.Live())
}
