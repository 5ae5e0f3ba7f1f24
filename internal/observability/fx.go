// Package observability wires logging, tracing and OTel metrics from the
// application config.
package observability

import (
	"github.com/smallbiznis/cushionly/internal/config"
	"github.com/smallbiznis/cushionly/internal/observability/logger"
	"github.com/smallbiznis/cushionly/internal/observability/metrics"
	"github.com/smallbiznis/cushionly/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoggerConfig,
		logger.New,
		TracingConfig,
		tracing.NewProvider,
		MetricsConfig,
		metrics.NewProvider,
		metrics.New,
	),
	// The tracer provider installs the global propagator and has to exist
	// before the first request span.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)

func LoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName:         cfg.AppName,
		Environment:         cfg.Environment,
		Version:             cfg.AppVersion,
		Level:               cfg.Observability.LogLevel,
		Format:              cfg.Observability.LogFormat,
		Debug:               cfg.Debug(),
		IncludeCaller:       true,
		IncludeStackOnError: cfg.Debug(),
	}
}

func TracingConfig(cfg config.Config) tracing.Config {
	obs := cfg.Observability
	return tracing.Config{
		Enabled:          obs.OtelEnabled,
		ServiceName:      cfg.AppName,
		ServiceVersion:   cfg.AppVersion,
		Environment:      cfg.Environment,
		ExporterEndpoint: obs.OtelEndpoint,
		ExporterProtocol: obs.OtelProtocol,
		SamplingRatio:    obs.SamplingRatio,
	}
}

func MetricsConfig(cfg config.Config) metrics.Config {
	obs := cfg.Observability
	return metrics.Config{
		Enabled:          obs.OtelEnabled,
		ExporterEndpoint: obs.OtelEndpoint,
		ExporterProtocol: obs.OtelProtocol,
		ServiceName:      cfg.AppName,
		Environment:      cfg.Environment,
	}
}
