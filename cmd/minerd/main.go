package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sumukeio/niche-miner/api"
	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/session"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("minerd starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"headless", cfg.Browser.Headless,
	)

	// ── 3. Load site profiles ───────────────────────────────────────
	market, err := config.LoadProfile(cfg.Miner.ProfileFile)
	if err != nil {
		slog.Error("failed to load site profile", "error", err)
		os.Exit(1)
	}
	search := config.DefaultSearchProfile()

	// ── 4. Optional proxy rotation ──────────────────────────────────
	var proxies *session.ProxyRotation
	if cfg.Browser.ProxyFile != "" {
		proxies, err = session.LoadProxyList(cfg.Browser.ProxyFile)
		if err != nil {
			slog.Error("failed to load proxy list", "error", err)
			os.Exit(1)
		}
		slog.Info("proxy rotation enabled", "proxies", proxies.Len())
	}

	// ── 5. Setup runner and router ──────────────────────────────────
	// serverCtx ends background work (rate-limiter eviction) when the
	// process shuts down.
	serverCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := api.NewRunner(cfg, market, search, proxies)
	startTime := time.Now()
	router := api.NewRouter(serverCtx, runner, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	<-serverCtx.Done()
	slog.Info("shutdown signal received")

	// Give in-flight requests 5 seconds to complete. A running mining
	// session holds its request open; it is cut off with the server.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("minerd stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
