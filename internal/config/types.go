// internal/config/types.go
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	// Server holds HTTP server configuration
	Server struct {
		// Address is the address to listen on
		Address string
		// ShutdownTimeout is the maximum time to wait for a graceful shutdown
		ShutdownTimeout time.Duration
	}

	// Metrics holds metrics server configuration
	Metrics struct {
		// Address is the address to listen on for the metrics server
		Address string
	}

	// TLS holds TLS configuration
	TLS struct {
		// Enabled indicates whether the API is served over HTTPS
		Enabled bool
		// CertPath is the path to the TLS certificate
		CertPath string
		// KeyPath is the path to the TLS key
		KeyPath string
		// CAPath is an extra CA bundle trusted when fetching the signing key set
		CAPath string
	}

	// Auth holds bearer token verification configuration
	Auth struct {
		// Domain is the identity provider tenant domain, e.g. "tenant.eu.auth0.com"
		Domain string
		// Audience is the API identifier tokens must be issued for
		Audience string
		// Algorithms is the allow-list of signing algorithms
		Algorithms []string
		// JWKSURL overrides the key set location derived from Domain
		JWKSURL string
		// DiscoveryEnabled resolves the key set location through OpenID discovery
		DiscoveryEnabled bool
		// JWKSTimeout bounds a single key set retrieval
		JWKSTimeout time.Duration
		// Leeway is the clock skew tolerated on time based claims
		Leeway time.Duration

		// Cache holds signing key cache configuration
		Cache struct {
			// Enabled keeps the key set in memory instead of fetching it per request
			Enabled bool
			// RefreshInterval is the minimum time between background refreshes
			RefreshInterval time.Duration
		}
	}

	// Database holds drink store configuration
	Database struct {
		// Path is the SQLite database file, ":memory:" for a transient store
		Path string
		// Reset drops and recreates the schema on startup, then seeds it
		Reset bool
	}

	// CORS holds cross-origin configuration for the browser frontend
	CORS struct {
		// AllowedOrigins lists the origins allowed to call the API, "*" for any
		AllowedOrigins []string
	}

	// Observability holds observability configuration
	Observability struct {
		// LogLevel is the minimum log level to emit
		LogLevel string
		// LogFormat is the log format (json, text, console)
		LogFormat string
	}
}

// IssuerURL is the exact "iss" value tokens must carry
func (c *Config) IssuerURL() string {
	return "https://" + c.Auth.Domain + "/"
}

// JWKSEndpoint is the location of the issuer's signing key set
func (c *Config) JWKSEndpoint() string {
	if c.Auth.JWKSURL != "" {
		return c.Auth.JWKSURL
	}
	return "https://" + c.Auth.Domain + "/.well-known/jwks.json"
}
