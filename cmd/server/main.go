package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/api"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/config"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/engine"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	addr := flag.String("addr", envOr("COHORT_ADDR", ""), "HTTP listen address (overrides config)")
	cfgPath := flag.String("config", envOr("COHORT_CONFIG", "configs/analytics.yaml"), "Path to analytics YAML config")
	flag.Parse()

	// ── Load config ──────────────────────────────────────────────────────────
	var (
		src    config.Source
		loader *config.Loader
	)
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Warn("config file unavailable, running on defaults", "path", *cfgPath, "err", err)
		src = config.NewStatic(config.Default())
		loader = nil
	} else {
		if err := config.Validate(loader.Config()); err != nil {
			slog.Error("config validation failed", "err", err)
			os.Exit(1)
		}
		src = loader
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	eng := engine.New(src)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	if loader != nil {
		loader.OnChange(func(newCfg *config.Config) {
			if err := config.Validate(newCfg); err != nil {
				slog.Warn("reloaded config is invalid", "err", err)
				return
			}
			slog.Info("config hot-reloaded",
				"fee_percent", newCfg.Analytics.FeePercent,
				"ad_spend_keys", len(newCfg.Analytics.AdSpend))
		})
		stopWatch, err := loader.Watch()
		if err != nil {
			slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	serverConf := src.Config().Server
	listenAddr := serverConf.Addr
	if *addr != "" {
		listenAddr = *addr
	}
	handler := api.New(eng, src, loader)
	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  time.Duration(serverConf.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(serverConf.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(serverConf.IdleTimeoutSec) * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	slog.Info("goodbye")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
