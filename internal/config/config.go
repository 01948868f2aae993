// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every setting name when read from the environment
const EnvPrefix = "COFFEESHOP"

// Load loads the configuration from all sources and returns the merged result
func Load(configPath string) (*Config, error) {
	v := viper.New()

	Settings.PopulateViperDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	var err error

	config.Server.Address = v.GetString("SERVER_ADDR")
	if config.Server.ShutdownTimeout, err = getDuration(v, "SHUTDOWN_TIMEOUT"); err != nil {
		return nil, err
	}

	config.Metrics.Address = v.GetString("METRICS_ADDR")

	config.TLS.Enabled = v.GetBool("TLS_ENABLED")
	config.TLS.CertPath = v.GetString("TLS_CERT_PATH")
	config.TLS.KeyPath = v.GetString("TLS_KEY_PATH")
	config.TLS.CAPath = v.GetString("TLS_CA_PATH")

	config.Auth.Domain = normalizeDomain(v.GetString("AUTH_DOMAIN"))
	config.Auth.Audience = v.GetString("AUTH_AUDIENCE")
	config.Auth.Algorithms = getList(v, "AUTH_ALGORITHMS")
	config.Auth.JWKSURL = v.GetString("AUTH_JWKS_URL")
	config.Auth.DiscoveryEnabled = v.GetBool("AUTH_DISCOVERY_ENABLED")
	if config.Auth.JWKSTimeout, err = getDuration(v, "AUTH_JWKS_TIMEOUT"); err != nil {
		return nil, err
	}
	if config.Auth.Leeway, err = getDuration(v, "AUTH_LEEWAY"); err != nil {
		return nil, err
	}
	config.Auth.Cache.Enabled = v.GetBool("AUTH_JWKS_CACHE_ENABLED")
	if config.Auth.Cache.RefreshInterval, err = getDuration(v, "AUTH_JWKS_CACHE_REFRESH"); err != nil {
		return nil, err
	}

	config.Database.Path = v.GetString("DATABASE_PATH")
	config.Database.Reset = v.GetBool("DATABASE_RESET")

	config.CORS.AllowedOrigins = getList(v, "CORS_ALLOWED_ORIGINS")

	config.Observability.LogLevel = v.GetString("LOG_LEVEL")
	config.Observability.LogFormat = v.GetString("LOG_FORMAT")

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// getDuration parses a duration setting, naming the setting on failure
func getDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ToLower(key), err)
	}
	return d, nil
}

// getList reads a list setting. Environment values are comma separated.
func getList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// normalizeDomain accepts "tenant.auth0.com", "https://tenant.auth0.com" or "https://tenant.auth0.com/"
func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	return strings.TrimSuffix(domain, "/")
}

// validateConfig performs validation on the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return fmt.Errorf("TLS certificate path is required when TLS is enabled")
		}
		if cfg.TLS.KeyPath == "" {
			return fmt.Errorf("TLS key path is required when TLS is enabled")
		}
		if _, err := os.Stat(cfg.TLS.CertPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", cfg.TLS.CertPath)
		}
		if _, err := os.Stat(cfg.TLS.KeyPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", cfg.TLS.KeyPath)
		}
	}
	if cfg.TLS.CAPath != "" {
		if _, err := os.Stat(cfg.TLS.CAPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS CA file not found: %s", cfg.TLS.CAPath)
		}
	}

	if err := validateAuthConfig(cfg); err != nil {
		return err
	}

	if cfg.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	return nil
}

// validateAuthConfig validates bearer token verification configuration
func validateAuthConfig(cfg *Config) error {
	if cfg.Auth.Domain == "" {
		return fmt.Errorf("auth domain is required")
	}
	if strings.Contains(cfg.Auth.Domain, "/") {
		return fmt.Errorf("auth domain must be a host name, got %q", cfg.Auth.Domain)
	}
	if cfg.Auth.Audience == "" {
		return fmt.Errorf("auth audience is required")
	}
	if len(cfg.Auth.Algorithms) == 0 {
		return fmt.Errorf("at least one signing algorithm must be allowed")
	}
	for _, alg := range cfg.Auth.Algorithms {
		if strings.EqualFold(alg, "none") || strings.HasPrefix(strings.ToUpper(alg), "HS") {
			return fmt.Errorf("signing algorithm %q cannot be verified with a public key set", alg)
		}
	}
	if cfg.Auth.JWKSURL != "" {
		u, err := url.Parse(cfg.Auth.JWKSURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid key set URL: %q", cfg.Auth.JWKSURL)
		}
	}
	if cfg.Auth.JWKSTimeout <= 0 {
		return fmt.Errorf("key set timeout must be positive")
	}
	if cfg.Auth.Cache.Enabled && cfg.Auth.Cache.RefreshInterval <= 0 {
		return fmt.Errorf("key set cache refresh interval must be positive")
	}
	return nil
}
