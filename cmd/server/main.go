package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/piezorelay/internal/adapter/httpserver"
	"github.com/pscheid92/piezorelay/internal/adapter/metrics"
	"github.com/pscheid92/piezorelay/internal/adapter/websocket"
	"github.com/pscheid92/piezorelay/internal/app"
	"github.com/pscheid92/piezorelay/internal/broadcast"
	"github.com/pscheid92/piezorelay/internal/platform/config"
	"github.com/pscheid92/piezorelay/internal/platform/logging"
	"github.com/pscheid92/piezorelay/internal/platform/version"
)

const shutdownCloseReason = "Server shutting down"

func runGracefulShutdown(cfg *config.Config, srv *httpserver.Server, registry *broadcast.Registry) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		closed := registry.CloseAll(shutdownCloseReason)
		slog.Info("Subscribers closed", "count", closed)

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func capacityCheck(limits *websocket.ConnectionLimits) httpserver.HealthCheck {
	return httpserver.HealthCheck{
		Name: "subscriber_capacity",
		Check: func(context.Context) error {
			global := limits.Global()
			if global.Saturated() {
				return fmt.Errorf("%d of %d subscriber slots in use", global.Current(), global.Max())
			}
			return nil
		},
	}
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Version)

	promRegistry := metrics.NewRegistry()
	metricSet := metrics.NewSet(promRegistry)

	registry := broadcast.NewRegistry(clock, metricSet.Broadcast)
	ingress := app.NewIngress(registry, metricSet.Ingress)

	limits := websocket.NewConnectionLimits(clock,
		int64(cfg.MaxWebSocketConnections),
		cfg.MaxConnectionsPerIP,
		cfg.ConnectionRate,
		cfg.ConnectionBurst,
	)
	wsHandler := websocket.NewHandler(registry, clock, websocket.HandlerConfig{
		AllowedOrigins: cfg.Origins(),
		IsDevelopment:  cfg.IsDevelopment(),
		Writer: websocket.WriterConfig{
			BufferSize:   cfg.SendBufferSize,
			WriteTimeout: cfg.WriteTimeout,
			PingInterval: cfg.PingInterval,
			PongTimeout:  cfg.PongTimeout,
		},
		Limits: limits,
	}, metricSet.WebSocket)

	healthChecks := []httpserver.HealthCheck{capacityCheck(limits)}
	srv := httpserver.NewServer(cfg, ingress, wsHandler, metrics.Handler(promRegistry), metricSet.HTTP, healthChecks)

	done := runGracefulShutdown(cfg, srv, registry)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
