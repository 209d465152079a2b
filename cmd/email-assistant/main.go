package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/di"
	"github.com/mikey/llm-email-assistant/internal/factory"
	"github.com/mikey/llm-email-assistant/internal/metrics"
	"github.com/mikey/llm-email-assistant/internal/ports"
	"github.com/mikey/llm-email-assistant/internal/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	intake ports.EmailIntake,
	svc *core.GenerationService,
	cache core.CompletionCache,
	registry *prometheus.Registry,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tc := cfg.GetTelemetry()
	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		Enabled:     tc.Enabled,
		ServiceName: tc.ServiceName,
		Endpoint:    tc.Endpoint,
		Insecure:    tc.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	var exporter *metrics.Exporter
	if mc := cfg.GetMetrics(); mc.Enabled {
		exporter = metrics.NewExporter(mc.ListenAddress, registry, logger.Named("metrics"))
		if err := exporter.Start(); err != nil {
			return err
		}
	}

	if err := intake.Start(ctx); err != nil {
		logger.Error("Failed to start intake", zap.Error(err))
		return err
	}
	logger.Info("Email assistant running", zap.String("provider", cfg.GetLLM().Provider))

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := intake.Stop(); err != nil {
		logger.Error("Failed to stop intake", zap.Error(err))
	}
	if exporter != nil {
		if err := exporter.Stop(shutdownCtx); err != nil {
			logger.Error("Failed to stop metrics exporter", zap.Error(err))
		}
	}
	if err := svc.Close(); err != nil {
		logger.Error("Failed to close generation client", zap.Error(err))
	}
	if stopper, ok := cache.(factory.Stopper); ok {
		stopper.Stop()
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("Failed to shut down tracer", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
