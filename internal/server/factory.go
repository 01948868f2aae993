// internal/server/factory.go
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"coffeeshop/internal/api"
	"coffeeshop/internal/auth/jwks"
	"coffeeshop/internal/auth/verifier"
	"coffeeshop/internal/authz"
	"coffeeshop/internal/config"
	"coffeeshop/internal/drinks"
	"coffeeshop/internal/observability"
	"coffeeshop/internal/observability/logging"
	"coffeeshop/internal/observability/metrics"
	tlsconfig "coffeeshop/internal/tls"
)

// NewFromConfig creates a new server from configuration
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	obs, err := observability.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	tlsSetup := &tlsconfig.Config{
		Logger:     logger,
		RootCAPath: cfg.TLS.CAPath,
		CertPath:   cfg.TLS.CertPath,
		KeyPath:    cfg.TLS.KeyPath,
	}
	var tlsCfg *tls.Config
	if cfg.TLS.Enabled {
		tlsCfg, err = tlsSetup.GetTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
		}
	}
	rootCAs, err := tlsSetup.RootCAs()
	if err != nil {
		return nil, fmt.Errorf("failed to load root CA: %w", err)
	}

	// The key set cache refreshes until the server stops.
	sourceCtx, cancelSource := context.WithCancel(context.WithoutCancel(ctx))
	source, err := newKeySource(sourceCtx, cfg, jwks.NewHTTPClient(cfg.Auth.JWKSTimeout, rootCAs), logger, obs.Metrics)
	if err != nil {
		cancelSource()
		return nil, fmt.Errorf("failed to initialize key set source: %w", err)
	}

	v, err := verifier.New(verifier.Config{
		Issuer:     cfg.IssuerURL(),
		Audience:   cfg.Auth.Audience,
		Algorithms: cfg.Auth.Algorithms,
		Leeway:     cfg.Auth.Leeway,
	}, source, logger)
	if err != nil {
		cancelSource()
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	gate := authz.NewGate(v, authz.ClaimsEnforcer{}, logger, obs.Metrics)

	store, err := drinks.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		cancelSource()
		return nil, fmt.Errorf("failed to open drink store: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		cancelSource()
		_ = store.Close()
		return nil, fmt.Errorf("drink store unreachable: %w", err)
	}
	if cfg.Database.Reset {
		if err := store.Reset(ctx); err != nil {
			cancelSource()
			_ = store.Close()
			return nil, fmt.Errorf("failed to reset drink store: %w", err)
		}
	}

	router, err := api.New(api.Config{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, store, gate, logger)
	if err != nil {
		cancelSource()
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}

	serverConfig := Config{
		Address:         cfg.Server.Address,
		MetricsAddress:  cfg.Metrics.Address,
		TLSConfig:       tlsCfg,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	logger.Info("Server configured",
		"issuer", cfg.IssuerURL(),
		"audience", cfg.Auth.Audience,
		"key_cache", cfg.Auth.Cache.Enabled,
		"database", cfg.Database.Path,
		"tls", cfg.TLS.Enabled,
	)

	return New(serverConfig, obs.Middleware(router), obs.MetricsHandler(), logger,
		closerFunc(func() error { cancelSource(); return nil }),
		store,
	), nil
}

// newKeySource resolves the key set location and builds a fetching or caching source
func newKeySource(ctx context.Context, cfg *config.Config, client *http.Client, logger *logging.Logger, m *metrics.Collector) (jwks.Source, error) {
	url := cfg.JWKSEndpoint()
	if cfg.Auth.DiscoveryEnabled && cfg.Auth.JWKSURL == "" {
		discovered, err := jwks.Discover(ctx, cfg.IssuerURL(), client)
		if err != nil {
			return nil, err
		}
		logger.Info("Discovered key set location", "url", logging.RedactStringURL(discovered))
		url = discovered
	}

	if !cfg.Auth.Cache.Enabled {
		return jwks.NewFetcher(jwks.Config{URL: url, Client: client}, logger, m), nil
	}
	return jwks.NewCache(ctx, jwks.CacheConfig{
		Config:          jwks.Config{URL: url, Client: client},
		RefreshInterval: cfg.Auth.Cache.RefreshInterval,
	}, logger, m)
}
