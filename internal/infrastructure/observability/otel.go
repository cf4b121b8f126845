package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zatekoja/doctordirectory/backend"

// metricExportInterval is how often the periodic reader pushes metrics
const metricExportInterval = 15 * time.Second

// Metrics holds all application metrics
type Metrics struct {
	RequestCount         metric.Int64Counter
	RequestDuration      metric.Float64Histogram
	RegenerationCount    metric.Int64Counter
	RegenerationDuration metric.Float64Histogram
	DroppedRows          metric.Int64Counter
	UnresolvedReferences metric.Int64Counter
	CacheHitCount        metric.Int64Counter
	CacheMissCount       metric.Int64Counter
}

// Setup initializes OpenTelemetry tracing, metrics and Go runtime metrics
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	// Set up trace exporter
	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Set up metric exporter
	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricExportInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		_ = tracerProvider.Shutdown(ctx)
		_ = meterProvider.Shutdown(ctx)
		return nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)
	}

	return shutdown, nil
}

// InitMetrics initializes application metrics against the global meter provider.
// Without Setup the instruments are no-ops.
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestCount, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	regenerationCount, err := meter.Int64Counter(
		"dataset.regeneration.count",
		metric.WithDescription("Number of regeneration runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	regenerationDuration, err := meter.Float64Histogram(
		"dataset.regeneration.duration",
		metric.WithDescription("Regeneration duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	droppedRows, err := meter.Int64Counter(
		"dataset.rows.dropped",
		metric.WithDescription("Source rows excluded by parsing or validation"),
	)
	if err != nil {
		return nil, err
	}

	unresolved, err := meter.Int64Counter(
		"dataset.references.unresolved",
		metric.WithDescription("Doctors whose institution reference did not resolve"),
	)
	if err != nil {
		return nil, err
	}

	cacheHitCount, err := meter.Int64Counter(
		"cache.hit.count",
		metric.WithDescription("Number of cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMissCount, err := meter.Int64Counter(
		"cache.miss.count",
		metric.WithDescription("Number of cache misses"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCount:         requestCount,
		RequestDuration:      requestDuration,
		RegenerationCount:    regenerationCount,
		RegenerationDuration: regenerationDuration,
		DroppedRows:          droppedRows,
		UnresolvedReferences: unresolved,
		CacheHitCount:        cacheHitCount,
		CacheMissCount:       cacheMissCount,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, spanName)
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// SetSpanAttributes sets attributes on a span
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
}

// RecordRequestMetric records a metric with attributes
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}

	metrics.RequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordRegeneration records one pipeline run
func RecordRegeneration(ctx context.Context, metrics *Metrics, outcome string, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	metrics.RegenerationCount.Add(ctx, 1, attrs)
	metrics.RegenerationDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordDroppedRows records rows excluded from one source
func RecordDroppedRows(ctx context.Context, metrics *Metrics, source, kind string, count int) {
	if metrics == nil || count == 0 {
		return
	}
	metrics.DroppedRows.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("kind", kind),
	))
}

// RecordUnresolved records doctors left without an institution
func RecordUnresolved(ctx context.Context, metrics *Metrics, count int) {
	if metrics == nil || count == 0 {
		return
	}
	metrics.UnresolvedReferences.Add(ctx, int64(count))
}

// RecordCacheHit records a cache hit
func RecordCacheHit(ctx context.Context, metrics *Metrics, key string) {
	if metrics == nil {
		return
	}
	metrics.CacheHitCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key", key)))
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(ctx context.Context, metrics *Metrics, key string) {
	if metrics == nil {
		return
	}
	metrics.CacheMissCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key", key)))
}
