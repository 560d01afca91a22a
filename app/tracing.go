package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const exportBatchTimeout = 2 * time.Second

// initTracing installs a global tracer provider exporting to the configured
// OTLP/HTTP collector. The returned func flushes and stops the exporter. If no
// endpoint is configured the global provider is left untouched.
func initTracing(ctx context.Context, config BaseConfig, opts ...sdktrace.TracerProviderOption) (func(context.Context) error, error) {
	if config.OTelEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.OTelEndpoint)}
	if config.OTelInsecure {
		exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create otlp trace exporter")
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceNameKey.String(config.OTelServiceName)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build trace resource")
	}

	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(exportBatchTimeout)),
	}, opts...)

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
