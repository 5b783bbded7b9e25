// signaltest connects to a signaling server, joins the configured room and
// prints every inbound frame to the console.
// Usage: go run ./cmd/signaltest --config configs/signal.local.yaml
//
// Run ./cmd/devrelay alongside it (local deployment) to exercise the full
// round trip with two signaltest instances.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/practice-signal/internal/config"
	"github.com/rickgao/practice-signal/internal/protocol"
	"github.com/rickgao/practice-signal/realtime"
)

func main() {
	configPath := flag.String("config", "configs/signal.local.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	chat := flag.String("chat", "", "chat message to send once connected")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	session, err := realtime.NewSession(cfg, logger, realtime.WithRegisterer(reg))
	if err != nil {
		logger.Error("failed to create session", "error", err)
		os.Exit(1)
	}
	realtime.SetDefault(session)
	defer session.Close()

	url, err := cfg.Server.URL()
	if err != nil {
		logger.Error("failed to resolve server url", "error", err)
		os.Exit(1)
	}

	logger.Info("session created",
		"session_id", session.ID(),
		"url", url,
		"room_id", cfg.Session.RoomID,
		"appointment_id", cfg.Session.AppointmentID,
	)

	connected := make(chan struct{}, 1)
	realtime.OnStatusChange(func(s realtime.Status) {
		logger.Info("connection status", "status", s)
		if s == realtime.StatusConnected {
			select {
			case connected <- struct{}{}:
			default:
			}
		}
	})

	// Console printers
	for _, t := range protocol.AllTypes() {
		realtime.RegisterHandler(t, func(msg realtime.Message) {
			printFrame(msg, *verbose)
		})
	}

	self := realtime.Participant{UserID: cfg.Session.UserID, UserName: cfg.Session.UserName}
	room := session.Telemedicine().Room(cfg.Session.RoomID, cfg.Session.AppointmentID, self)

	realtime.ConnectWhiteboard()
	realtime.ConnectTelemedicine()

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           metricsHandler(cfg.Metrics.Path, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-connected:
		}

		if cfg.Session.RoomID != "" {
			room.Join()
			if *chat != "" {
				room.SendChatMessage(*chat)
			}
		}
		if cfg.Session.PracticeID != 0 {
			realtime.SendWhiteboardUpdate(cfg.Session.PracticeID, map[string]any{
				"event":  "hello",
				"userId": cfg.Session.UserID,
			})
		}
		return nil
	})

	// Stats printer
	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				stats := session.Manager().Stats()
				logger.Info("stats",
					"status", stats.Status,
					"attempts", stats.Attempts,
					"frames_sent", stats.FramesSent,
					"frames_received", stats.FramesReceived,
					"protocol_errors", stats.ProtocolErrors,
					"retries_pending", stats.RetriesPending,
					"dispatched", stats.Dispatched,
				)
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down...")

		if realtime.ConnectionStatus() == realtime.StatusConnected && cfg.Session.RoomID != "" {
			room.Leave()
		}
		realtime.DisconnectTelemedicine()
		realtime.DisconnectWhiteboard()
		realtime.Disconnect()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	logger.Info("signaltest running - press Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		logger.Error("signaltest stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func metricsHandler(path string, reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

func printFrame(msg realtime.Message, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(msg, "", "  ")
		fmt.Printf("[%s] %s\n", msg.Type(), data)
		return
	}

	switch m := msg.(type) {
	case *protocol.WhiteboardUpdate:
		fmt.Printf("[WHITEBOARD] practice=%d bytes=%d\n", m.PracticeID, len(m.Data))
	case *protocol.Offer:
		fmt.Printf("[OFFER] room=%s appt=%d from=%s sdp_bytes=%d\n", m.RoomID, m.AppointmentID, m.From, len(m.Offer.SDP))
	case *protocol.Answer:
		fmt.Printf("[ANSWER] room=%s appt=%d from=%s sdp_bytes=%d\n", m.RoomID, m.AppointmentID, m.From, len(m.Answer.SDP))
	case *protocol.ICECandidate:
		fmt.Printf("[ICE] room=%s appt=%d from=%s candidate=%q\n", m.RoomID, m.AppointmentID, m.From, m.Candidate.Candidate)
	case *protocol.UserJoined:
		fmt.Printf("[JOINED] room=%s appt=%d user=%d name=%q\n", m.RoomID, m.AppointmentID, m.UserID, m.UserName)
	case *protocol.UserLeft:
		fmt.Printf("[LEFT] room=%s appt=%d user=%d\n", m.RoomID, m.AppointmentID, m.UserID)
	case *protocol.ChatMessage:
		fmt.Printf("[CHAT] room=%s appt=%d from=%d %q\n", m.RoomID, m.AppointmentID, m.FromUserID, m.Message)
	}
}
