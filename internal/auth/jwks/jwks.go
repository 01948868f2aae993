// internal/auth/jwks/jwks.go
package jwks

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"sync"
	"time"

	"coffeeshop/internal/observability/logging"
	"coffeeshop/internal/observability/metrics"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Source provides the issuer's current signing key set
type Source interface {
	// KeySet returns the key set to verify the next token with
	KeySet(ctx context.Context) (jwk.Set, error)
}

// Refresher is implemented by sources that may return a stale key set.
// The verifier asks for a refresh when a token names an unknown kid.
type Refresher interface {
	Refresh(ctx context.Context) (jwk.Set, error)
}

// Config holds key set retrieval configuration
type Config struct {
	// URL is the key set endpoint
	URL string

	// Client is the HTTP client used for retrieval
	Client *http.Client
}

// NewHTTPClient builds the client used to reach the issuer.
// rootCAs may be nil to use the system pool.
func NewHTTPClient(timeout time.Duration, rootCAs *x509.CertPool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if rootCAs != nil {
		transport.TLSClientConfig = &tls.Config{
			RootCAs:    rootCAs,
			MinVersion: tls.VersionTLS12,
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Fetcher retrieves the key set from the issuer on every call
type Fetcher struct {
	url     string
	client  *http.Client
	logger  *logging.Logger
	metrics *metrics.Collector
}

// NewFetcher creates a Fetcher
func NewFetcher(config Config, logger *logging.Logger, metrics *metrics.Collector) *Fetcher {
	client := config.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		url:     config.URL,
		client:  client,
		logger:  logger.WithModule("auth.jwks"),
		metrics: metrics,
	}
}

// KeySet fetches the issuer's key set
func (f *Fetcher) KeySet(ctx context.Context) (jwk.Set, error) {
	start := time.Now()
	set, err := jwk.Fetch(ctx, f.url, jwk.WithHTTPClient(f.client))
	f.metrics.RecordKeySetFetch("remote", err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch key set from %s: %w", f.url, err)
	}

	logging.FromContextOr(ctx, f.logger).Debug("Fetched signing key set",
		"url", logging.RedactStringURL(f.url),
		"keys", set.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return set, nil
}

// Cache keeps the key set in memory and refreshes it in the background.
// A forced refresh happens at most once per minForcedRefresh.
type Cache struct {
	url     string
	cache   *jwk.Cache
	logger  *logging.Logger
	metrics *metrics.Collector

	minForcedRefresh time.Duration
	mu               sync.Mutex
	lastForced       time.Time
}

// CacheConfig holds key set cache configuration
type CacheConfig struct {
	Config

	// RefreshInterval is the minimum time between background refreshes
	RefreshInterval time.Duration

	// MinForcedRefresh limits refreshes triggered by unknown key ids
	MinForcedRefresh time.Duration
}

// NewCache registers the key set URL with a jwx cache bound to ctx.
// The cache stops refreshing once ctx is done.
func NewCache(ctx context.Context, config CacheConfig, logger *logging.Logger, metrics *metrics.Collector) (*Cache, error) {
	client := config.Client
	if client == nil {
		client = http.DefaultClient
	}

	c := jwk.NewCache(ctx)
	if err := c.Register(config.URL,
		jwk.WithHTTPClient(client),
		jwk.WithMinRefreshInterval(config.RefreshInterval),
	); err != nil {
		return nil, fmt.Errorf("failed to register key set %s: %w", config.URL, err)
	}

	minForced := config.MinForcedRefresh
	if minForced <= 0 {
		minForced = 10 * time.Second
	}

	return &Cache{
		url:              config.URL,
		cache:            c,
		logger:           logger.WithModule("auth.jwks.cache"),
		metrics:          metrics,
		minForcedRefresh: minForced,
	}, nil
}

// KeySet returns the cached key set, fetching it on first use
func (c *Cache) KeySet(ctx context.Context) (jwk.Set, error) {
	start := time.Now()
	set, err := c.cache.Get(ctx, c.url)
	c.metrics.RecordKeySetFetch("cache", err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to get key set %s: %w", c.url, err)
	}
	return set, nil
}

// Refresh refetches the key set unless a forced refresh happened recently,
// in which case the cached set is returned.
func (c *Cache) Refresh(ctx context.Context) (jwk.Set, error) {
	c.mu.Lock()
	if time.Since(c.lastForced) < c.minForcedRefresh {
		c.mu.Unlock()
		return c.KeySet(ctx)
	}
	c.lastForced = time.Now()
	c.mu.Unlock()

	logging.FromContextOr(ctx, c.logger).Info("Refreshing signing key set",
		"url", logging.RedactStringURL(c.url))

	start := time.Now()
	set, err := c.cache.Refresh(ctx, c.url)
	c.metrics.RecordKeySetFetch("refresh", err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to refresh key set %s: %w", c.url, err)
	}
	return set, nil
}
