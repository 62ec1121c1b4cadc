package telemetry

import (
    "context"
    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/metric"
    "go.opentelemetry.io/otel/metric/noop"
)

// Instruments are created against the global provider, which forwards to whatever
// provider New installs later.
var (
    pushCounter metric.Int64Counter
    popCounter  metric.Int64Counter
)

func init() {
    meter := otel.Meter(systemName)
    pushCounter = newCounter(meter, "stack.push", "Values pushed onto registered stacks")
    popCounter = newCounter(meter, "stack.pop", "Values popped from registered stacks")
}

// newCounter reports a failed registration to the global error handler and falls back
// to a no-op counter so recording never has to check for nil.
func newCounter(meter metric.Meter, name, description string) metric.Int64Counter {
    counter, err := meter.Int64Counter(name,
        metric.WithDescription(description),
        metric.WithUnit("{value}"))
    if err != nil {
        otel.Handle(err)
        return noop.Int64Counter{}
    }
    return counter
}

func RecordPush(ctx context.Context, n int) {
    if n > 0 {
        pushCounter.Add(ctx, int64(n))
    }
}

func RecordPop(ctx context.Context) {
    popCounter.Add(ctx, 1)
}
