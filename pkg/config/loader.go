package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, SECRETKEY_CONFIG env, ./config.yaml, /etc/secretkey/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. SECRETKEY_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/secretkey/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("SECRETKEY_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/secretkey/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps SECRETKEY_* environment variables to config fields.
// Malformed numeric or JSON values are errors rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SECRETKEY_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SECRETKEY_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("SECRETKEY_AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}
	if v := os.Getenv("SECRETKEY_CONFIGURATION_KEY"); v != "" {
		cfg.Auth.SecretKey.ConfigurationKey = v
	}
	if v := os.Getenv("SECRETKEY_SECRETS_FILE"); v != "" {
		cfg.Auth.SecretKey.SecretsFile = v
		if !cfg.Auth.SecretKey.HasSource("file") {
			cfg.Auth.SecretKey.Sources = append(cfg.Auth.SecretKey.Sources, "file")
		}
	}
	if v := os.Getenv("SECRETKEY_JWKS_URL"); v != "" {
		cfg.Auth.JWT.JWKSURL = v
	}
	if v := os.Getenv("SECRETKEY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// SECRETKEY_CLAIMS: JSON object of identifier -> claim list.
	if v := os.Getenv("SECRETKEY_CLAIMS"); v != "" {
		claims, err := parseClaimsJSON(v)
		if err != nil {
			return err
		}
		cfg.Auth.SecretKey.Claims = claims
	}

	return nil
}

// parseClaimsJSON parses a JSON object mapping identifiers to claim lists.
func parseClaimsJSON(jsonStr string) (map[string][]ClaimConfig, error) {
	var claims map[string][]ClaimConfig
	if err := json.Unmarshal([]byte(jsonStr), &claims); err != nil {
		return nil, fmt.Errorf("parsing SECRETKEY_CLAIMS JSON: %w", err)
	}
	return claims, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// If the value field is empty and the file field is set, the file is read,
// whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// auth.jwt.jwks_url_file -> auth.jwt.jwks_url
	if cfg.Auth.JWT.JWKSURLFile != "" && cfg.Auth.JWT.JWKSURL == "" {
		val, err := readSecretFile(cfg.Auth.JWT.JWKSURLFile)
		if err != nil {
			return fmt.Errorf("auth.jwt.jwks_url_file: %w", err)
		}
		cfg.Auth.JWT.JWKSURL = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
