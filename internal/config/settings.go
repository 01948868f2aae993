// internal/config/settings.go
package config

import "github.com/spf13/viper"

// SettingType represents the type of a setting
type SettingType string

const (
	// String type for string settings
	String SettingType = "string"
	// Bool type for boolean settings
	Bool SettingType = "bool"
	// Duration type for settings parsed with time.ParseDuration
	Duration SettingType = "duration"
	// StringSlice type for comma separated settings
	StringSlice SettingType = "stringSlice"
)

// Setting defines a configuration setting
type Setting struct {
	// Name is the name of the setting
	Name string
	// Short is a short description of the setting
	Short string
	// Type is the type of the setting
	Type SettingType
	// Default is the default value of the setting
	Default interface{}
	// Required indicates whether the setting must be provided
	Required bool
}

// SettingList is a list of settings
type SettingList []Setting

// PopulateViperDefaults sets default values for all settings in Viper
func (sl SettingList) PopulateViperDefaults(v *viper.Viper) {
	for _, s := range sl {
		v.SetDefault(s.Name, s.Default)
	}
}

// Settings defines all application settings
var Settings = SettingList{
	// Server settings
	{
		Name:    "SERVER_ADDR",
		Short:   "Address on which the API listens",
		Type:    String,
		Default: ":5000",
	},
	{
		Name:    "METRICS_ADDR",
		Short:   "Address on which the metrics server listens",
		Type:    String,
		Default: ":9090",
	},
	{
		Name:    "SHUTDOWN_TIMEOUT",
		Short:   "Maximum time to wait for graceful shutdown",
		Type:    Duration,
		Default: "30s",
	},

	// TLS settings
	{
		Name:    "TLS_ENABLED",
		Short:   "Serve the API over HTTPS",
		Type:    Bool,
		Default: false,
	},
	{
		Name:    "TLS_CERT_PATH",
		Short:   "Path to TLS certificate file",
		Type:    String,
		Default: "",
	},
	{
		Name:    "TLS_KEY_PATH",
		Short:   "Path to TLS key file",
		Type:    String,
		Default: "",
	},
	{
		Name:    "TLS_CA_PATH",
		Short:   "Extra CA bundle trusted when fetching the signing key set",
		Type:    String,
		Default: "",
	},

	// Bearer token verification
	{
		Name:     "AUTH_DOMAIN",
		Short:    "Identity provider domain, tokens must be issued by https://<domain>/",
		Type:     String,
		Default:  "",
		Required: true,
	},
	{
		Name:     "AUTH_AUDIENCE",
		Short:    "API audience tokens must be issued for",
		Type:     String,
		Default:  "",
		Required: true,
	},
	{
		Name:    "AUTH_ALGORITHMS",
		Short:   "Allowed token signing algorithms",
		Type:    StringSlice,
		Default: []string{"RS256"},
	},
	{
		Name:    "AUTH_JWKS_URL",
		Short:   "Signing key set URL, defaults to https://<domain>/.well-known/jwks.json",
		Type:    String,
		Default: "",
	},
	{
		Name:    "AUTH_DISCOVERY_ENABLED",
		Short:   "Resolve the signing key set URL with OpenID discovery",
		Type:    Bool,
		Default: false,
	},
	{
		Name:    "AUTH_JWKS_TIMEOUT",
		Short:   "Timeout for a single signing key set retrieval",
		Type:    Duration,
		Default: "5s",
	},
	{
		Name:    "AUTH_LEEWAY",
		Short:   "Clock skew tolerated on exp/nbf/iat",
		Type:    Duration,
		Default: "0s",
	},
	{
		Name:    "AUTH_JWKS_CACHE_ENABLED",
		Short:   "Cache the signing key set, refreshing it when a key id is unknown",
		Type:    Bool,
		Default: false,
	},
	{
		Name:    "AUTH_JWKS_CACHE_REFRESH",
		Short:   "Minimum interval between signing key set refreshes when caching",
		Type:    Duration,
		Default: "15m",
	},

	// Database
	{
		Name:    "DATABASE_PATH",
		Short:   "SQLite database file",
		Type:    String,
		Default: "database.db",
	},
	{
		Name:    "DATABASE_RESET",
		Short:   "Drop, recreate and seed the drinks table on startup",
		Type:    Bool,
		Default: false,
	},

	// CORS
	{
		Name:    "CORS_ALLOWED_ORIGINS",
		Short:   "Origins allowed to call the API",
		Type:    StringSlice,
		Default: []string{"*"},
	},

	// Observability
	{
		Name:    "LOG_LEVEL",
		Short:   "Logging level",
		Type:    String,
		Default: "info",
	},
	{
		Name:    "LOG_FORMAT",
		Short:   "Logging format (json, text, console)",
		Type:    String,
		Default: "json",
	},
}
