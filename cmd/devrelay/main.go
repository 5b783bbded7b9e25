// devrelay runs a local signaling relay for development.
// Usage: go run ./cmd/devrelay --config configs/signal.local.yaml
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/practice-signal/internal/config"
	"github.com/rickgao/practice-signal/internal/relay"
	"github.com/rickgao/practice-signal/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/signal.local.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting devrelay",
		"version", version.Version,
		"commit", version.Commit,
		"listen", cfg.Relay.Listen,
		"path", cfg.Server.Path,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := relay.New(relay.Config{
		Path:         cfg.Server.Path,
		WriteTimeout: cfg.Relay.WriteTimeout,
		QueueSize:    cfg.Relay.QueueSize,
	}, logger)

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, srv)
	mux.Handle(cfg.Metrics.Path, promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Status string      `json:"status"`
			Relay  relay.Stats `json:"relay"`
		}{
			Status: "healthy",
			Relay:  srv.Stats(),
		})
	})

	httpServer := &http.Server{
		Addr:              cfg.Relay.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("relay listening", "url", fmt.Sprintf("ws://localhost%s%s", cfg.Relay.Listen, cfg.Server.Path))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down...")

		// Hijacked WebSocket connections are not tracked by Shutdown.
		srv.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("devrelay stopped", "error", err)
		os.Exit(1)
	}

	stats := srv.Stats()
	logger.Info("devrelay stopped",
		"frames_in", stats.FramesIn,
		"frames_out", stats.FramesOut,
		"frames_invalid", stats.FramesInvalid,
		"slow_peers", stats.SlowPeers,
	)
}
