package telemetry

import (
    "context"
    "go.opentelemetry.io/contrib/instrumentation/runtime"
    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
    "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
    "go.opentelemetry.io/otel/propagation"
    "go.opentelemetry.io/otel/sdk/metric"
    "go.opentelemetry.io/otel/sdk/resource"
    sdktrace "go.opentelemetry.io/otel/sdk/trace"
    semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
    "go.opentelemetry.io/otel/trace"
    "time"
)

const systemName = "flutterstack"

type IgnoreExporterErrorsHandler struct{}

func (IgnoreExporterErrorsHandler) Handle(err error) {}

// New installs global tracer and meter providers exporting to collectorURL over OTLP/HTTP
// and returns a function flushing and stopping both.
func New(service, version string, collectorURL string) (func(), error) {
    ctx := context.Background()

    res, err := resource.New(
        ctx,
        resource.WithHost(),
        resource.WithAttributes(semconv.ServiceNameKey.String(service), semconv.ServiceVersion(version)))
    if err != nil {
        return nil, err
    }

    traceOpts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
    metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
    if collectorURL != "" {
        traceOpts = append(traceOpts, otlptracehttp.WithEndpoint(collectorURL))
        metricOpts = append(metricOpts, otlpmetrichttp.WithEndpoint(collectorURL))
    }

    te, err := otlptracehttp.New(ctx, traceOpts...)
    if err != nil {
        return nil, err
    }

    tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(te), sdktrace.WithResource(res))
    otel.SetTracerProvider(tp)
    otel.SetTextMapPropagator(propagation.TraceContext{})

    me, err := otlpmetrichttp.New(ctx, metricOpts...)
    if err != nil {
        return nil, err
    }

    mp := metric.NewMeterProvider(
        metric.WithResource(res),
        metric.WithReader(metric.NewPeriodicReader(
            me,
            metric.WithProducer(runtime.NewProducer()),
            metric.WithInterval(60*time.Second))))

    if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(60 * time.Second)); err != nil {
        return nil, err
    }
    otel.SetMeterProvider(mp)

    // swallow otel errors so an absent collector doesn't spam stdout
    otel.SetErrorHandler(IgnoreExporterErrorsHandler{})

    return func() {
        _ = tp.Shutdown(context.Background())
        _ = mp.Shutdown(ctx)
    }, nil
}

func SetAttributes(span trace.Span, kv ...attribute.KeyValue) {
    for _, attr := range kv {
        span.SetAttributes(attr)
    }
}

func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
    opts = append(opts, trace.WithAttributes(attribute.String("system.name", systemName)))
    return otel.GetTracerProvider().Tracer(systemName).Start(ctx, name, opts...)
}
