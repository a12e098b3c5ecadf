// Package observability wires up the three OTel metrics instruments the
// job queue core emits: claim latency, per-queue depth, and cleanup
// batch size. It mirrors the teacher's pkg/observability provider setup
// but narrows the surface to metrics only and uses the gRPC OTLP
// exporter already declared in go.mod.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultServiceName identifies this service's metrics when
// Config.ServiceName is empty.
const DefaultServiceName = "jobqueue"

// Config controls whether and where metrics are exported.
type Config struct {
	Enabled     bool
	Collector   string // host:port for the OTLP gRPC endpoint
	ServiceName string
}

// Metrics holds the instruments JobManager and Cleanup record against.
type Metrics struct {
	ClaimLatency metric.Float64Histogram
	CleanupBatch metric.Int64Counter
	QueueDepth   metric.Int64Histogram
}

// Provider bundles the meter provider with the derived Metrics so a
// caller can defer Shutdown in one place.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	Metrics       Metrics
}

// NewProvider builds the meter provider (no-op if cfg.Enabled is false)
// and registers the job queue's instruments against it.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	mp, err := newMeterProvider(ctx, cfg, serviceName)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(mp)

	meter := mp.Meter(serviceName)

	claimLatency, err := meter.Float64Histogram(
		"jobqueue.claim.latency",
		metric.WithDescription("time from findPending candidate selection to a successful claimAtomic"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create claim latency histogram: %w", err)
	}

	cleanupBatch, err := meter.Int64Counter(
		"jobqueue.cleanup.deleted",
		metric.WithDescription("jobs removed by a retention cleanup pass"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cleanup batch counter: %w", err)
	}

	queueDepth, err := meter.Int64Histogram(
		"jobqueue.queue.depth",
		metric.WithDescription("availableCount sampled at claim time for the job's queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue depth histogram: %w", err)
	}

	return &Provider{
		meterProvider: mp,
		Metrics: Metrics{
			ClaimLatency: claimLatency,
			CleanupBatch: cleanupBatch,
			QueueDepth:   queueDepth,
		},
	}, nil
}

// Shutdown flushes and closes the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}

func newMeterProvider(ctx context.Context, cfg Config, serviceName string) (*sdkmetric.MeterProvider, error) {
	if !cfg.Enabled {
		return sdkmetric.NewMeterProvider(), nil
	}

	serviceResource, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
		resource.WithSchemaURL(semconv.SchemaURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}
	merged, err := resource.Merge(resource.Default(), serviceResource)
	if err != nil {
		return nil, fmt.Errorf("failed to merge resource: %w", err)
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithTimeout(10 * time.Second),
	}
	if cfg.Collector != "" {
		opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.Collector), otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(merged),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))),
	), nil
}
