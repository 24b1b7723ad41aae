// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by [Load].
const (
	EnvConfigFile    = "TLS_TRUST_CONFIG_FILE"
	EnvStorePassword = "TLS_TRUST_STORE_PASSWORD"
)

// Log formats accepted by LogFormat.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config is the trust manager configuration.
type Config struct {
	// TrustStore: The user's trust store holding trust-always anchors
	TrustStore struct {
		// Path: PKCS#12 trust store file, created on first persistent decision
		Path string `json:"path" yaml:"path" validate:"required"`
		// Passphrase: Store passphrase (can also be set via TLS_TRUST_STORE_PASSWORD env var)
		Passphrase string `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
	} `json:"trustStore" yaml:"trustStore"`

	// DefaultRoots: Optional application root store consulted after the platform roots
	DefaultRoots struct {
		// Path: PEM, DER, PKCS#7 or PKCS#12 file; empty disables the validator
		Path string `json:"path,omitempty" yaml:"path,omitempty" validate:"omitempty,file_exists"`
		// Passphrase: Passphrase of a PKCS#12 root store
		Passphrase string `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
	} `json:"defaultRoots" yaml:"defaultRoots"`

	// PlatformRoots: Whether the operating system's roots are consulted first
	PlatformRoots bool `json:"platformRoots" yaml:"platformRoots"`

	// Revocation: CRL checking of end-entity certificates
	Revocation struct {
		// Enabled: Check CRL distribution points after a path is built
		Enabled bool `json:"enabled" yaml:"enabled"`
		// Timeout: CRL download timeout in seconds
		Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds" validate:"gte=1,lte=300"`
		// CacheSize: Maximum number of cached CRLs
		CacheSize int `json:"cacheSize" yaml:"cacheSize" validate:"gte=1,lte=10000"`
		// CleanupInterval: How often expired CRLs are dropped, as a Go duration
		CleanupInterval string `json:"cleanupInterval" yaml:"cleanupInterval" validate:"required,duration"`
	} `json:"revocation" yaml:"revocation"`

	// LogFormat: "text" for humans, "json" for one object per line
	LogFormat string `json:"logFormat" yaml:"logFormat" validate:"oneof=text json"`
}

// RevocationTimeout returns the CRL download timeout.
func (c *Config) RevocationTimeout() time.Duration {
	return time.Duration(c.Revocation.Timeout) * time.Second
}

// CleanupInterval returns the parsed CRL cache cleanup interval.
// Validated configurations always parse.
func (c *Config) CleanupInterval() time.Duration {
	d, _ := time.ParseDuration(c.Revocation.CleanupInterval)
	return d
}

// DefaultTrustStorePath returns the trust store location under the user's
// configuration directory, or a relative fallback when it is unknown.
func DefaultTrustStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".tls-trust-manager", "truststore.p12")
	}
	return filepath.Join(dir, "tls-trust-manager", "truststore.p12")
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	config := &Config{}
	config.TrustStore.Path = DefaultTrustStorePath()
	config.PlatformRoots = true
	config.Revocation.Enabled = true
	config.Revocation.Timeout = 10
	config.Revocation.CacheSize = 100
	config.Revocation.CleanupInterval = "1h"
	config.LogFormat = LogFormatText
	return config
}

// detectConfigFormat determines the configuration file format based on file extension.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// Load loads the configuration from a JSON or YAML file or applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//     Supported formats: .json, .yaml, .yml
//
// Returns:
//   - *Config: Validated configuration
//   - error: Error if the file cannot be read or parsed, or validation fails
//
// Configuration Priority:
//  1. Default values are set
//  2. TLS_TRUST_CONFIG_FILE environment variable is checked if configPath is empty
//  3. Config file values override defaults
//  4. TLS_TRUST_STORE_PASSWORD overrides the trust store passphrase
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := unmarshalConfig(data, config, detectConfigFormat(configPath)); err != nil {
			return nil, err
		}
	}

	if pass, ok := os.LookupEnv(EnvStorePassword); ok {
		config.TrustStore.Passphrase = pass
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
