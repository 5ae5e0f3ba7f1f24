package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Config load results.
const (
	LoadHit   = "hit"
	LoadMiss  = "miss"
	LoadError = "error"
)

// Metrics exposes the pricing instruments.
type Metrics struct {
	quotes           metric.Int64Counter
	incompleteQuotes metric.Int64Counter
	configLoads      metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New creates the pricing counters on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "cushionly"
	}
	meter := provider.Meter(name)

	quotes, err := meter.Int64Counter("cushionly_quotes_total",
		metric.WithDescription("Quotes priced."))
	if err != nil {
		return nil, err
	}
	incomplete, err := meter.Int64Counter("cushionly_incomplete_quotes_total",
		metric.WithDescription("Quotes priced with missing selections or dimensions."))
	if err != nil {
		return nil, err
	}
	loads, err := meter.Int64Counter("cushionly_config_loads_total",
		metric.WithDescription("Resolved configuration lookups by result."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		quotes:           quotes,
		incompleteQuotes: incomplete,
		configLoads:      loads,
	}, nil
}

// RecordQuote counts one priced quote.
func (m *Metrics) RecordQuote(ctx context.Context, marginMethod string, complete bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("margin_method", strings.TrimSpace(marginMethod)))
	m.quotes.Add(ctx, 1, metric.WithAttributes(attrs...))
	if !complete {
		m.incompleteQuotes.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordConfigLoad counts one configuration lookup with result LoadHit,
// LoadMiss or LoadError.
func (m *Metrics) RecordConfigLoad(ctx context.Context, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("result", result))
	m.configLoads.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Shops are unbounded, so only these keys may label a series.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"margin_method": {},
	"result":        {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
