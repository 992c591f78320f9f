// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/tabularius/docs" // generated swagger spec
	"github.com/tomtom215/tabularius/internal/analytics"
	"github.com/tomtom215/tabularius/internal/api"
	"github.com/tomtom215/tabularius/internal/auth"
	"github.com/tomtom215/tabularius/internal/authz"
	"github.com/tomtom215/tabularius/internal/config"
	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/logging"
	"github.com/tomtom215/tabularius/internal/middleware"
	"github.com/tomtom215/tabularius/internal/shipper"
	"github.com/tomtom215/tabularius/internal/store"
	"github.com/tomtom215/tabularius/internal/supervisor"
	"github.com/tomtom215/tabularius/internal/supervisor/services"
	ws "github.com/tomtom215/tabularius/internal/websocket"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("storage_dir", cfg.Storage.Dir).
		Bool("storage_in_memory", cfg.Storage.InMemory).
		Msg("Configuration loaded")

	// Badger holds the persisted sessions and the runtime logger
	// config. It is opened first and closed last.
	entryStore, err := store.New(store.Options{
		Dir:        cfg.Storage.Dir,
		InMemory:   cfg.Storage.InMemory,
		SyncWrites: cfg.Storage.SyncWrites,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open entry store")
	}
	defer func() {
		if err := entryStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing entry store")
		}
	}()
	logging.Info().Msg("Entry store opened")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The DuckDB mirror powers the stats endpoint. Losing it degrades
	// stats to 503; it never blocks startup.
	var analyticsStore *analytics.Store
	if a, err := analytics.New(analytics.Config{
		Path:          cfg.Analytics.Path,
		QueueSize:     cfg.Analytics.QueueSize,
		BatchSize:     cfg.Analytics.BatchSize,
		FlushInterval: cfg.Analytics.FlushInterval,
	}); err != nil {
		logging.Warn().Err(err).Msg("Analytics mirror unavailable - stats endpoint disabled")
	} else {
		analyticsStore = a
		defer func() {
			if err := analyticsStore.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing analytics store")
			}
		}()
		logging.Info().Str("path", cfg.Analytics.Path).Msg("Analytics mirror opened")
	}

	logShipper := buildShipper(cfg)
	defer func() {
		if err := logShipper.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing shipper")
		}
	}()

	hub := ws.NewHub()

	logger := debuglog.New(ctx, seedProfile(cfg), loggerOptions(cfg, entryStore, logShipper, hub, analyticsStore)...)
	logging.Info().Str("session_id", logger.SessionID()).Msg("Diagnostic logger ready")

	// Panics recovered anywhere in the process surface as diagnostic
	// entries through the dispatcher.
	faults := debuglog.NewFaultDispatcher()
	logger.ObserveFaults(faults)

	authMiddleware, err := buildAuth(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authentication")
	}
	defer authMiddleware.Close()

	enforcer, err := authz.NewEnforcer(enforcerConfig(cfg))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	defer enforcer.Close()

	handler := api.NewHandler(logger, entryStore, analyticsStore, hub, authMiddleware, logShipper)

	chiCfg := api.DefaultChiMiddlewareConfig()
	chiCfg.CORSAllowedOrigins = cfg.Server.CORSOrigins
	chiCfg.RateLimitRequests = cfg.Server.RateLimitReqs
	chiCfg.RateLimitWindow = cfg.Server.RateLimitWindow
	chiCfg.RateLimitDisabled = cfg.Server.RateLimitDisabled
	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED - use only in isolated test environments")
	}

	router := api.NewRouter(handler, api.NewChiMiddleware(chiCfg), authz.NewMiddleware(enforcer), faults)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	// Data layer: retention sweep and the analytics insert loop.
	if cfg.Storage.Retention > 0 && !cfg.Storage.InMemory {
		tree.AddDataService(services.NewRetentionSweeper(
			entryStore, cfg.Storage.Retention, cfg.Storage.SweepInterval, logger.SessionID()))
		logging.Info().
			Dur("retention", cfg.Storage.Retention).
			Dur("interval", cfg.Storage.SweepInterval).
			Msg("Retention sweeper scheduled")
	}
	if analyticsStore != nil {
		tree.AddDataService(analyticsStore)
	}

	// Messaging layer: delivery fan-out and the memory baseline.
	tree.AddMessagingService(hub)
	tree.AddMessagingService(logShipper)
	if cfg.Memory.SampleInterval > 0 {
		tree.AddMessagingService(services.NewMemorySampler(logger, cfg.Memory.SampleInterval))
	}

	// API layer.
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Stopped gracefully")
}

// seedProfile derives the initial logger configuration from the
// environment profile plus any explicit overrides. A config persisted
// from a previous run still wins inside debuglog.New.
func seedProfile(cfg *config.Config) debuglog.Config {
	profile := debuglog.DefaultConfig(debuglog.Environment(cfg.Server.Environment))

	if cfg.Debuglog.Level != "" {
		if level, err := debuglog.ParseLevel(cfg.Debuglog.Level); err != nil {
			logging.Warn().Str("level", cfg.Debuglog.Level).Msg("Ignoring invalid DEBUGLOG_LEVEL")
		} else {
			profile.Level = level
		}
	}
	if len(cfg.Debuglog.Categories) > 0 {
		profile.Categories = cfg.Debuglog.Categories
	}
	if cfg.Debuglog.MaxStorageEntries > 0 {
		profile.MaxStorageEntries = cfg.Debuglog.MaxStorageEntries
	}
	return profile
}

func loggerOptions(cfg *config.Config, entryStore *store.Store, logShipper *shipper.Shipper, hub *ws.Hub, analyticsStore *analytics.Store) []debuglog.Option {
	format := debuglog.ConsoleText
	if cfg.Server.Environment == "production" {
		format = debuglog.ConsoleJSON
	}

	opts := []debuglog.Option{
		debuglog.WithConsoleSink(debuglog.NewConsoleSink(nil, format)),
		debuglog.WithEntryStore(entryStore),
		debuglog.WithConfigStore(entryStore),
		debuglog.WithNetworkSink(logShipper),
		debuglog.WithMirror(hub),
		debuglog.WithRouteProvider(middleware.GetClientRoute),
	}
	if analyticsStore != nil {
		opts = append(opts, debuglog.WithMirror(analyticsStore))
	}
	return opts
}

// buildShipper assembles the network sink. Without a reachable
// collector the shipper runs as an inactive placeholder that accepts
// and discards entries, so the sink wiring stays uniform.
func buildShipper(cfg *config.Config) *shipper.Shipper {
	shipCfg := shipper.Config{
		BufferSize:    cfg.Shipper.BufferSize,
		BatchSize:     cfg.Shipper.BatchSize,
		FlushInterval: cfg.Shipper.FlushInterval,
	}

	// Active shipping is a production posture; elsewhere the
	// placeholder keeps diagnostics local.
	wantActive := cfg.Server.Environment == "production"

	switch cfg.Shipper.Transport {
	case "nats":
		transport, err := shipper.NewNATSTransport(shipper.NATSConfig{
			URL:           cfg.Shipper.URL,
			SubjectPrefix: cfg.Shipper.NATSSubjectPrefix,
			Embedded:      cfg.Shipper.NATSEmbedded,
			StoreDir:      cfg.Shipper.NATSStoreDir,
			Host:          cfg.Shipper.NATSHost,
			Port:          cfg.Shipper.NATSPort,
		})
		if err != nil {
			logging.Warn().Err(err).Msg("NATS transport unavailable - shipper runs as placeholder")
			return shipper.New(shipCfg, nil, false)
		}
		logging.Info().Bool("embedded", cfg.Shipper.NATSEmbedded).Msg("Shipper using NATS JetStream transport")
		return shipper.New(shipCfg, transport, wantActive)

	default: // http
		if cfg.Shipper.URL == "" {
			logging.Info().Msg("No collector URL configured - shipper runs as placeholder")
			return shipper.New(shipCfg, nil, false)
		}
		transport, err := shipper.NewHTTPTransport(shipper.HTTPConfig{
			URL:              cfg.Shipper.URL,
			Timeout:          cfg.Shipper.Timeout,
			FailureThreshold: uint32(cfg.Shipper.FailureThreshold),
			BreakerTimeout:   cfg.Shipper.BreakerTimeout,
			RatePerSecond:    cfg.Shipper.RatePerSecond,
			Burst:            cfg.Shipper.Burst,
		})
		if err != nil {
			logging.Warn().Err(err).Msg("HTTP transport unavailable - shipper runs as placeholder")
			return shipper.New(shipCfg, nil, false)
		}
		logging.Info().Str("url", cfg.Shipper.URL).Msg("Shipper using HTTP transport")
		return shipper.New(shipCfg, transport, wantActive)
	}
}

func buildAuth(cfg *config.Config) (*auth.Middleware, error) {
	var (
		jwtManager   *auth.JWTManager
		basicManager *auth.BasicAuthManager
		err          error
	)

	mode := auth.Mode(cfg.Security.AuthMode)

	if mode == auth.ModeJWT {
		jwtManager, err = auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.SessionTimeout)
		if err != nil {
			return nil, fmt.Errorf("jwt manager: %w", err)
		}
	}
	// The basic manager doubles as the credential check behind the JWT
	// login endpoint.
	if mode == auth.ModeBasic || mode == auth.ModeJWT {
		basicManager, err = auth.NewBasicAuthManager(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("basic auth manager: %w", err)
		}
	}

	return auth.NewMiddleware(mode, jwtManager, basicManager, cfg.Security.AdminUsername)
}

// enforcerConfig maps optional model/policy file overrides onto the
// enforcer defaults. With no overrides the embedded model and policy
// apply.
func enforcerConfig(cfg *config.Config) *authz.EnforcerConfig {
	if cfg.Security.CasbinModelPath == "" && cfg.Security.CasbinPolicyPath == "" {
		return nil
	}
	ec := authz.DefaultEnforcerConfig()
	ec.ModelPath = cfg.Security.CasbinModelPath
	ec.PolicyPath = cfg.Security.CasbinPolicyPath
	return ec
}
