// internal/tls/config.go
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"coffeeshop/internal/observability/logging"
)

// Config holds the TLS configuration
type Config struct {
	// Logger is the logger to use
	Logger *logging.Logger

	// RootCAPath is an extra CA bundle trusted for outgoing connections
	RootCAPath string

	// CertPath is the path to the server certificate
	CertPath string

	// KeyPath is the path to the server key
	KeyPath string
}

// GetTLSConfig creates a TLS configuration for the HTTPS listener
func (c *Config) GetTLSConfig() (*tls.Config, error) {
	c.Logger.Debug("Initializing TLS configuration")

	cert, err := tls.LoadX509KeyPair(c.CertPath, c.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load server certificate: %w", err)
	}

	c.Logger.Info("TLS configuration successful", "cert", c.CertPath)
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// RootCAs returns the system pool extended with RootCAPath.
// It returns nil when no extra bundle is configured so callers keep the default.
func (c *Config) RootCAs() (*x509.CertPool, error) {
	if c.RootCAPath == "" {
		return nil, nil
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		c.Logger.Warn("System certificate pool unavailable, trusting only the configured CA", logging.Err(err))
		pool = x509.NewCertPool()
	}

	rootCA, err := os.ReadFile(c.RootCAPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read root CA file: %w", err)
	}
	if !pool.AppendCertsFromPEM(rootCA) {
		return nil, fmt.Errorf("failed to parse root CA file: %s", c.RootCAPath)
	}

	c.Logger.Debug("Root CA loaded", "RootCAFile", c.RootCAPath)
	return pool, nil
}
