// Command dqserver exposes the cleaning pipeline over HTTP with Prometheus
// metrics and OpenTelemetry tracing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dqcli/internal/config"
	"dqcli/internal/infrastructure"
	"dqcli/internal/pipeline"
	transport "dqcli/internal/transport/http"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogger()

	ctx := context.Background()
	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer providers.Shutdown(ctx)

	tracer, err := pipeline.NewTracer(providers.Meter)
	if err != nil {
		slog.Error("failed to create pipeline tracer", "error", err)
		os.Exit(1)
	}

	router := transport.NewRouter(transport.RouterConfig{
		Defaults: cfg.PipelineOptions(),
		Tracer:   tracer,
		Registry: providers.Registry,
		Logger:   logger,
		Version:  version,
		Timeout:  time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := transport.NewServer(addr, router,
		time.Duration(cfg.Server.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.Server.WriteTimeoutSec)*time.Second)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
