// Package config provides unified configuration for the secretkey server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (SECRETKEY_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
//
// The secrets themselves are not part of this configuration. They are read
// from the sources listed under auth.secret_key.sources.
package config

import "time"

// Config holds all configuration for the secretkey server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 15s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// Type selects the schemes: "none", "secretkey", "jwt" or "chain"
	// (secret key first, then JWT). Default: "secretkey".
	Type string `yaml:"type"`

	// DefaultDecision applies when every scheme abstains: "no" or "yes".
	// Default: "no".
	DefaultDecision string `yaml:"default_decision"`

	// Realm is added to the WWW-Authenticate challenge when set.
	Realm string `yaml:"realm"`

	// Bypass lists paths served without authentication.
	// Default: /healthz, /readyz, /metrics.
	Bypass []string `yaml:"bypass"`

	SecretKey SecretKeyConfig `yaml:"secret_key"`
	JWT       JWTConfig       `yaml:"jwt"`
}

// SecretKeyConfig configures the pre-shared secret scheme.
type SecretKeyConfig struct {
	ConfigurationKey string `yaml:"configuration_key"` // default: "AUTH_SECRET_KEY"
	Scheme           string `yaml:"scheme"`            // default: "SecretKey"

	// Sources are read in order, later entries overriding earlier keys:
	// "env", "file", "kubernetes". Default: ["env"].
	Sources []string `yaml:"sources"`

	// SecretsFile is a YAML document of configuration entries, used by the
	// "file" source.
	SecretsFile string `yaml:"secrets_file"`

	// Watch rebuilds the store when SecretsFile changes.
	Watch         bool          `yaml:"watch"`
	WatchDebounce time.Duration `yaml:"watch_debounce"` // default: 100ms

	Kubernetes KubernetesSecretConfig `yaml:"kubernetes"`

	// Claims maps an identifier (or "*" for all) to extra claims.
	Claims map[string][]ClaimConfig `yaml:"claims"`
}

// KubernetesSecretConfig names the Secret used by the "kubernetes" source.
type KubernetesSecretConfig struct {
	Namespace string `yaml:"namespace"` // default: "default"
	Name      string `yaml:"name"`
}

// ClaimConfig describes one static claim.
type ClaimConfig struct {
	Type  string `yaml:"type" json:"type"`
	Value string `yaml:"value" json:"value"`
}

// JWTConfig configures the JWT bearer scheme.
type JWTConfig struct {
	Issuer      string            `yaml:"issuer"`
	Audience    string            `yaml:"audience"`
	JWKSURL     string            `yaml:"jwks_url"`
	JWKSURLFile string            `yaml:"jwks_url_file"` // _file variant for jwks_url
	UserClaim   string            `yaml:"user_claim"`    // default: "sub"
	ScopesClaim string            `yaml:"scopes_claim"`  // default: "scope"
	ClaimMap    map[string]string `yaml:"claim_map"`
	CacheTTL    time.Duration     `yaml:"cache_ttl"` // default: 1h

	// MinRefreshInterval is the minimum time between JWKS fetches.
	// Default: 30s.
	MinRefreshInterval time.Duration `yaml:"min_refresh_interval"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR; default: INFO
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Type:            "secretkey",
			DefaultDecision: "no",
			Bypass:          []string{"/healthz", "/readyz", "/metrics"},
			SecretKey: SecretKeyConfig{
				ConfigurationKey: "AUTH_SECRET_KEY",
				Scheme:           "SecretKey",
				Sources:          []string{"env"},
				WatchDebounce:    100 * time.Millisecond,
				Kubernetes: KubernetesSecretConfig{
					Namespace: "default",
				},
			},
			JWT: JWTConfig{
				UserClaim:   "sub",
				ScopesClaim: "scope",
				CacheTTL:    time.Hour,

				MinRefreshInterval: 30 * time.Second,
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// HasSource reports whether the secret key sources include name.
func (c SecretKeyConfig) HasSource(name string) bool {
	for _, s := range c.Sources {
		if s == name {
			return true
		}
	}
	return false
}
