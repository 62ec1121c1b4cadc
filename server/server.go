package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/aleph-zero/flutterstack/api"
	"github.com/aleph-zero/flutterstack/service/registry"
	"github.com/aleph-zero/flutterstack/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/riandyrn/otelchi"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	serviceName    = "flutterstack"
	serviceVersion = "0.0.1"
)

var collectorURL = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

/* *** Server Config *** */

type Config struct {
	Address        string
	Port           uint16
	RegistryConfig *registry.Config
}

type Option func(*Config)

func NewConfig(options ...Option) *Config {
	cfg := &Config{}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

func WithAddress(address string) Option {
	return func(c *Config) {
		c.Address = address
	}
}

func WithPort(port uint16) Option {
	return func(c *Config) {
		c.Port = port
	}
}

func WithRegistryConfig(registryConfig *registry.Config) Option {
	return func(c *Config) {
		c.RegistryConfig = registryConfig
	}
}

// NewRouter wires the middleware chain and stack routes around svc.
func NewRouter(logger *httplog.Logger, svc registry.Service) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Heartbeat("/heartbeat"))
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))
	router.Use(middleware.RequestID)
	router.Use(render.SetContentType(render.ContentTypeJSON))
	router.Use(httplog.RequestLogger(logger))

	handler := api.NewStackHandler(svc)
	router.Mount("/stacks", handler.Routes())
	return router
}

func NewLogger() *httplog.Logger {
	return httplog.NewLogger(serviceName, httplog.Options{
		LogLevel:         slog.LevelInfo,
		MessageFieldName: "msg",
		JSON:             true,
		Concise:          true,
		RequestHeaders:   false,
		ResponseHeaders:  false,
	})
}

func Bootstrap(config *Config) {
	ctx := context.Background()

	logger := NewLogger()
	logger.InfoContext(ctx, "Bootstrapping server...", "config", config)

	/* *** Initialize Opentelemetry *** */
	stopTelemetry, err := telemetry.New(serviceName, serviceVersion, collectorURL)
	if err != nil {
		logger.ErrorContext(ctx, "Error initializing telemetry", "err", err)
	} else {
		defer stopTelemetry()
	}

	/* *** Initialize services and inject them into the api routes *** */
	svc := registry.NewServiceWithConfig(config.RegistryConfig)
	if err := svc.Open(); err != nil {
		logger.ErrorContext(ctx, "Error opening registry", "err", err)
		os.Exit(1)
	}

	srv := http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Address, config.Port),
		Handler: NewRouter(logger, svc),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "Error starting server", "err", err)
		}
		logger.InfoContext(ctx, "Server stopped accepting connections")
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-sig

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(ctx, "Error shutting down server", "err", err)
		os.Exit(1)
	}
	if err := svc.Persist(); err != nil {
		logger.ErrorContext(ctx, "Error persisting registry", "err", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Server shutdown complete")
}
