// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog provides the tutorials catalog HTTP service.
//
// The service coordinates the embedded Badger store, admin session
// management, HTTP routing, and observability infrastructure. The
// catalog is a four-level hierarchy (languages, categories, topics,
// articles) served over a REST API; see the subpackages for the
// individual layers.
//
// # Usage
//
//	cfg := catalog.Config{Port: 4000, DataDir: "/var/lib/catalog"}
//	svc, err := catalog.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/timeofcode/platform/services/catalog/middleware"
	"github.com/timeofcode/platform/services/catalog/routes"
	"github.com/timeofcode/platform/services/catalog/store"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the catalog service.
//
// Thread Safety:
//
//	Implementations must be safe for concurrent use. Run() blocks and
//	should only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds catalog service configuration. All fields have defaults
// applied by New(); a zero Config is valid for local development.
type Config struct {
	// Port is the HTTP server port. Default: 4000
	Port int

	// DataDir is the Badger database directory.
	// Default: "./data/catalog"
	DataDir string

	// InMemory runs the store without disk persistence. Intended for
	// tests and throwaway environments.
	InMemory bool

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// If empty, tracing is disabled.
	OTelEndpoint string

	// GinMode sets the Gin framework mode.
	// Valid values: "debug", "release", "test"
	// Default: uses GIN_MODE env var or "debug"
	GinMode string

	// AllowedOrigins is the CORS allow-list for the web frontend.
	// Default: http://localhost:3000
	AllowedOrigins []string

	// SessionTTL is the admin session lifetime.
	// Default: middleware.DefaultSessionTTL (7 days)
	SessionTTL time.Duration
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use. All fields are
// read-only after New() returns.
type service struct {
	config        Config
	store         *store.Store
	sessions      *middleware.SessionStore
	router        *gin.Engine
	tracerCleanup func(context.Context)
}

// New creates a catalog Service with the given configuration.
//
// Description:
//
//	New applies configuration defaults, opens the backing store, and
//	wires up sessions, tracing, and HTTP routes. A store that cannot
//	be opened is fatal: the service never starts half-initialized and
//	handlers can assume a usable store for the life of the process.
//
// Inputs:
//
//	cfg - Service configuration. Zero values use defaults.
//
// Outputs:
//
//	Service - Ready-to-run catalog service
//	error - Non-nil if the store or tracer cannot be initialized
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	storeCfg := store.DefaultConfig(s.config.DataDir)
	if s.config.InMemory {
		storeCfg = store.InMemoryConfig()
	}

	s.store = store.New(storeCfg)
	if err := s.store.Open(); err != nil {
		return nil, fmt.Errorf("failed to open catalog store: %w", err)
	}

	if s.config.OTelEndpoint != "" {
		cleanup, err := s.initTracer()
		if err != nil {
			s.cleanup()
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}
		s.tracerCleanup = cleanup
	}

	s.sessions = middleware.NewSessionStore(s.config.SessionTTL)

	s.initRouter()

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
// Cleanup is automatic on return.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting catalog server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 4000
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data/catalog"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = middleware.DefaultSessionTTL
	}
	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// Uses an insecure gRPC connection, appropriate for internal networks.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("catalog-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initRouter sets up the Gin HTTP router with all routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	s.router = gin.Default()
	s.router.Use(middleware.CORS(s.config.AllowedOrigins))
	if s.config.OTelEndpoint != "" {
		s.router.Use(otelgin.Middleware("catalog-service"))
	}

	routes.SetupRoutes(s.router, s.store, s.sessions)
}

// cleanup releases all resources held by the service. Called when
// Run() exits or on initialization failure.
func (s *service) cleanup() {
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
	if err := s.store.Close(); err != nil {
		slog.Warn("catalog store close error", "error", err)
	}
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
