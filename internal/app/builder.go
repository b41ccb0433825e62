package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/toolhive-scene-server/internal/api"
	"github.com/stacklok/toolhive-scene-server/internal/config"
	"github.com/stacklok/toolhive-scene-server/internal/service"
	"github.com/stacklok/toolhive-scene-server/internal/simulation"
	"github.com/stacklok/toolhive-scene-server/internal/telemetry"
	"github.com/stacklok/toolhive-scene-server/internal/transition"
)

const (
	defaultRequestTimeout     = 10 * time.Second
	defaultReadTimeout        = 10 * time.Second
	defaultWriteTimeout       = 15 * time.Second
	defaultIdleTimeout        = 60 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultManifestRetryDelay = 100 * time.Millisecond

	// tracerName is the instrumentation scope of scene transition spans
	tracerName = "github.com/stacklok/toolhive-scene-server/transition"
)

// SceneAppOptions is a function that configures the scene app builder
type SceneAppOptions func(*sceneAppConfig) error

// sceneAppConfig collects the inputs of NewSceneApp. Component overrides
// exist primarily for testing.
type sceneAppConfig struct {
	config *config.Config

	switcher transition.Switcher

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...SceneAppOptions) (*sceneAppConfig, error) {
	cfg := &sceneAppConfig{
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.address == "" {
		cfg.address = cfg.config.GetAddress()
	}

	return cfg, nil
}

// NewSceneApp wires telemetry, the scene loader, one runner and scene
// manager per peer, the simulation loop, and the HTTP server.
func NewSceneApp(ctx context.Context, opts ...SceneAppOptions) (*SceneApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	tel, err := telemetry.New(ctx,
		telemetry.WithTelemetryConfig(cfg.config.Telemetry),
		telemetry.WithResourceAttributes(
			telemetry.ResourceLoaderType.String(cfg.config.GetLoaderType()),
			telemetry.ResourcePeerCount.Int(len(cfg.config.Peers)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	components, err := buildComponents(cfg, tel)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}

	httpServer := buildHTTPServer(cfg, components.SceneService, tel.MetricsHandler())

	appCtx, cancel := context.WithCancel(ctx)

	return &SceneApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		telemetry:  tel,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) SceneAppOptions {
	return func(cfg *sceneAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress overrides the configured HTTP listen address
func WithAddress(addr string) SceneAppOptions {
	return func(cfg *sceneAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		_, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("address is not valid: %w", err)
		}
		if _, err := net.LookupPort("tcp", port); err != nil || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) SceneAppOptions {
	return func(cfg *sceneAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithSwitcher replaces the configured scene loader
func WithSwitcher(s transition.Switcher) SceneAppOptions {
	return func(cfg *sceneAppConfig) error {
		if s == nil {
			return fmt.Errorf("switcher cannot be nil")
		}
		cfg.switcher = s
		return nil
	}
}

func buildComponents(b *sceneAppConfig, tel *telemetry.Telemetry) (*AppComponents, error) {
	slog.Info("Initializing scene components",
		"loader", b.config.GetLoaderType(),
		"peer_count", len(b.config.Peers),
		"scene_count", len(b.config.Scenes))

	if b.switcher == nil {
		switcher, err := buildSwitcher(b.config)
		if err != nil {
			return nil, fmt.Errorf("failed to build scene loader: %w", err)
		}
		b.switcher = switcher
	}

	metrics, err := telemetry.NewTransitionMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create transition metrics: %w", err)
	}

	peers := buildPeers(b.config, b.switcher, metrics, tel.Tracer(tracerName))

	svc, err := service.NewSceneService(peers, service.WithScenes(sceneRefs(b.config)...))
	if err != nil {
		return nil, fmt.Errorf("failed to create scene service: %w", err)
	}

	slog.Info("Scene components initialized successfully")
	return &AppComponents{
		Loop:         simulation.NewLoop(b.config.GetTickInterval(), runners(peers)...),
		Peers:        peers,
		SceneService: svc,
	}, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(b *sceneAppConfig, svc service.SceneService, metricsHandler http.Handler) *http.Server {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	serverOpts := []api.ServerOption{api.WithMiddlewares(b.middlewares...)}
	if metricsHandler != nil {
		serverOpts = append(serverOpts, api.WithMetricsHandler(metricsHandler))
		slog.Info("Prometheus metrics endpoint enabled", "path", "/metrics")
	}

	server := &http.Server{
		Addr:         b.address,
		Handler:      api.NewServer(svc, serverOpts...),
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server
}
