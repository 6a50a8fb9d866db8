package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Auth.Type {
	case "none", "secretkey", "jwt", "chain":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"secretkey\", \"jwt\", or \"chain\", got %q", c.Auth.Type))
	}

	switch c.Auth.DefaultDecision {
	case "yes", "no":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.default_decision must be \"yes\" or \"no\", got %q", c.Auth.DefaultDecision))
	}

	if c.Auth.Type == "secretkey" || c.Auth.Type == "chain" {
		errs = append(errs, c.Auth.SecretKey.validate()...)
	}

	if (c.Auth.Type == "jwt" || c.Auth.Type == "chain") && c.Auth.JWT.JWKSURL == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.jwks_url or auth.jwt.jwks_url_file is required when auth.type is %q", c.Auth.Type))
	}

	switch strings.ToUpper(c.Logging.Level) {
	case "", "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.level must be DEBUG, INFO, WARN, or ERROR, got %q", c.Logging.Level))
	}

	switch c.Logging.Format {
	case "", "text", "json":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}

func (c SecretKeyConfig) validate() []error {
	var errs []error

	if strings.TrimSpace(c.ConfigurationKey) == "" {
		errs = append(errs, fmt.Errorf("auth.secret_key.configuration_key must not be empty"))
	}

	if len(c.Sources) == 0 {
		errs = append(errs, fmt.Errorf("auth.secret_key.sources must list at least one source"))
	}
	for i, s := range c.Sources {
		switch s {
		case "env", "file", "kubernetes":
			// valid
		default:
			errs = append(errs, fmt.Errorf("auth.secret_key.sources[%d] must be \"env\", \"file\", or \"kubernetes\", got %q", i, s))
		}
	}

	if c.HasSource("file") && c.SecretsFile == "" {
		errs = append(errs, fmt.Errorf("auth.secret_key.secrets_file is required when sources include \"file\""))
	}
	if c.Watch && !c.HasSource("file") {
		errs = append(errs, fmt.Errorf("auth.secret_key.watch requires the \"file\" source"))
	}
	if c.HasSource("kubernetes") && c.Kubernetes.Name == "" {
		errs = append(errs, fmt.Errorf("auth.secret_key.kubernetes.name is required when sources include \"kubernetes\""))
	}

	for id, claims := range c.Claims {
		for i, cl := range claims {
			if cl.Type == "" {
				errs = append(errs, fmt.Errorf("auth.secret_key.claims[%q][%d].type must not be empty", id, i))
			}
		}
	}

	return errs
}
