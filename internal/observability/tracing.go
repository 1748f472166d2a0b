package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const defaultServiceName = "kunjungan-api"

// Tracer starts every application span. It is a no-op until InitTracing
// installs a provider.
var Tracer trace.Tracer = otel.Tracer(defaultServiceName)

// TracingConfig mirrors the TRACING_* settings.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	// Exporter is "stdout" (the default) or "otlp".
	Exporter     string
	OTLPEndpoint string
	// SamplerRatio of 1 or more samples everything, 0 or less nothing.
	SamplerRatio float64
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "", "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		if cfg.OTLPEndpoint == "" {
			return nil, errors.New("OTLP_ENDPOINT is required for the otlp exporter")
		}
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure())
	}
	return nil, fmt.Errorf("unsupported TRACING_EXPORTER %q", cfg.Exporter)
}

func newSampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	if ratio <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// InitTracing installs the global tracer provider and W3C propagators and
// returns the provider's shutdown. Disabled tracing keeps the no-op provider.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
	if !cfg.Enabled {
		Tracer = otel.Tracer(cfg.ServiceName)
		return func(context.Context) error { return nil }, nil
	}

	ctx := context.Background()
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplerRatio)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	Tracer = provider.Tracer(cfg.ServiceName)

	return provider.Shutdown, nil
}

// Span is a small wrapper for service code that only needs attributes and
// error status.
type Span struct {
	span trace.Span
}

// NewSpan starts a child of the span in ctx.
func NewSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (*Span, context.Context) {
	ctx, span := Tracer.Start(ctx, name, opts...)
	return &Span{span: span}, ctx
}

func (s *Span) AddAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// SetError marks the span failed. A nil err is ignored.
func (s *Span) SetError(err error) {
	markFailed(s.span, err)
}

func (s *Span) End() {
	s.span.End()
}

func startSpan(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// StartRepoSpan starts an internal span around one repository call.
func StartRepoSpan(ctx context.Context, table, operation string) (context.Context, trace.Span) {
	return startSpan(ctx, "repository."+operation, trace.SpanKindInternal,
		attribute.String("db.table", table),
		attribute.String("db.operation", operation))
}

// StartCacheSpan starts a client span around one Redis round trip.
func StartCacheSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	return startSpan(ctx, "redis."+operation, trace.SpanKindClient,
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", operation),
		attribute.String("cache.key", key))
}

// RecordErrorInContext marks the span carried by ctx failed.
func RecordErrorInContext(ctx context.Context, err error) {
	markFailed(trace.SpanFromContext(ctx), err)
}

func markFailed(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
