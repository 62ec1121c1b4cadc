package client

import (
    "context"
    "fmt"
    "github.com/aleph-zero/flutterstack/api"
    "github.com/aleph-zero/flutterstack/telemetry"
    "go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
    "io"
    "log/slog"
    "net/http"
    "os"
    "time"
)

const defaultBatchSize = 3000

type LoaderConfig struct {
    ClientConfig *Config
    Stack        string
    Filename     string
    BatchSize    int
}

type LoaderOption func(*LoaderConfig)

func NewLoaderConfig(options ...LoaderOption) *LoaderConfig {
    cfg := &LoaderConfig{BatchSize: defaultBatchSize}
    for _, option := range options {
        option(cfg)
    }
    return cfg
}

func WithStack(id string) LoaderOption {
    return func(cfg *LoaderConfig) {
        cfg.Stack = id
    }
}

func WithFilename(filename string) LoaderOption {
    return func(cfg *LoaderConfig) {
        cfg.Filename = filename
    }
}

func WithBatchSize(n int) LoaderOption {
    return func(cfg *LoaderConfig) {
        if n > 0 {
            cfg.BatchSize = n
        }
    }
}

func WithClientConfig(clientConfig *Config) LoaderOption {
    return func(cfg *LoaderConfig) {
        cfg.ClientConfig = clientConfig
    }
}

// BootstrapLoader pushes every integer in the configured file onto a stack, creating
// the stack first when no id is given.
func BootstrapLoader(config *LoaderConfig) {
    ctx := context.Background()
    if shutdown, err := telemetry.New(serviceName, serviceVersion, collectorURL); err == nil {
        defer shutdown()
    }

    client := New(config.ClientConfig.BaseURL(), &http.Client{
        Transport: otelhttp.NewTransport(http.DefaultTransport),
        Timeout:   time.Second * 30,
    })

    file, err := os.Open(config.Filename)
    if err != nil {
        slog.Error("Error opening file", "file", config.Filename, "error", err)
        return
    }
    defer file.Close()

    id := config.Stack
    if id == "" {
        m, err := client.Create(ctx, nil)
        if err != nil {
            slog.Error("Error creating stack", "error", err)
            return
        }
        id = m.ID
    }

    total, err := Load(ctx, client, id, file, config.BatchSize)
    if err != nil {
        slog.Error("Error loading file", "file", config.Filename, "stack", id, "loaded", total, "error", err)
        return
    }
    slog.Info("Loaded file", "file", config.Filename, "stack", id, "loaded", total)
}

// Load streams integers from r (a JSON array or a sequence of JSON numbers) and pushes
// them onto stack id in batches of batchSize. It returns how many values were pushed.
func Load(ctx context.Context, client *Client, id string, r io.Reader, batchSize int) (int, error) {
    if batchSize <= 0 {
        batchSize = defaultBatchSize
    }

    batch := make([]int, 0, batchSize)
    total := 0
    batchNum := 1

    flush := func() error {
        if len(batch) == 0 {
            return nil
        }
        if _, err := client.Push(ctx, id, batch...); err != nil {
            return fmt.Errorf("sending batch %d: %w", batchNum, err)
        }
        slog.Debug("Batch sent", "batch", batchNum, "values", len(batch))
        total += len(batch)
        batch = batch[:0]
        batchNum++
        return nil
    }

    err := api.ProcessJsonStream(r, func(v int) error {
        batch = append(batch, v)
        if len(batch) >= batchSize {
            return flush()
        }
        return nil
    })
    if err != nil {
        return total, err
    }
    return total, flush()
}
