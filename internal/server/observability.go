package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/observability/metrics"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/observability/tracer"
	"github.com/FACorreiaa/tourism-dashboard/internal/pkg/config"
)

const (
	ServiceName    = "tourism-dashboard"
	ServiceVersion = "0.1.0"
)

// ObservabilityShutdownFunc is the function type returned by InitObservability
type ObservabilityShutdownFunc func(context.Context) error

// InitObservability initializes OpenTelemetry and application metrics
func InitObservability(cfg config.ObservabilityConfig, logger *zap.Logger) (ObservabilityShutdownFunc, error) {
	otelShutdown, err := tracer.InitOtelProviders(tracer.Options{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		MetricsAddr:    cfg.MetricsAddr,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics.InitAppMetrics()
	logger.Info("Observability initialized",
		zap.String("metrics_endpoint", cfg.MetricsAddr+"/metrics"),
		zap.Bool("otlp_export", cfg.OTLPEndpoint != ""))

	return otelShutdown, nil
}
