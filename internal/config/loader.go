package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading from multiple sources
type Loader struct {
	configPaths []string
	envPrefix   string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{
			"./protolab.yaml",
		},
		envPrefix: "PROTOLAB_",
	}
}

// Load loads configuration from all available sources: the first config
// file found, then environment variable overrides, then validation.
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	if err := l.loadFromFile(config); err != nil {
		return nil, fmt.Errorf("failed to load config from file: %w", err)
	}

	l.loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile attempts to load configuration from default file locations
func (l *Loader) loadFromFile(config *Config) error {
	for _, path := range l.configPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}

		return nil
	}

	// No config file found, use defaults
	return nil
}

// loadFromEnv loads configuration overrides from environment variables
func (l *Loader) loadFromEnv(config *Config) {
	if server := os.Getenv(l.envPrefix + "DNS_SERVER"); server != "" {
		config.DNS.Server = server
	}
	if timeout := os.Getenv(l.envPrefix + "DNS_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.DNS.Timeout = d
		}
	}
	if retries := os.Getenv(l.envPrefix + "DNS_MAX_RETRIES"); retries != "" {
		if i, err := strconv.Atoi(retries); err == nil {
			config.DNS.MaxRetries = i
		}
	}

	if port := os.Getenv(l.envPrefix + "DHCP_SERVER_PORT"); port != "" {
		if i, err := strconv.Atoi(port); err == nil {
			config.DHCP.ServerPort = i
		}
	}
	if port := os.Getenv(l.envPrefix + "DHCP_CLIENT_PORT"); port != "" {
		if i, err := strconv.Atoi(port); err == nil {
			config.DHCP.ClientPort = i
		}
	}

	if journalType := os.Getenv(l.envPrefix + "JOURNAL_TYPE"); journalType != "" {
		config.Journal.Type = journalType
	}
	if endpoint := os.Getenv(l.envPrefix + "JOURNAL_ENDPOINT"); endpoint != "" {
		config.Journal.Endpoint = endpoint
	}

	if verbose := os.Getenv(l.envPrefix + "VERBOSE"); verbose != "" {
		if b, err := strconv.ParseBool(verbose); err == nil {
			config.Logging.Verbose = b
		}
	}
}

// SetConfigPaths sets the configuration file search paths
func (l *Loader) SetConfigPaths(paths []string) {
	l.configPaths = paths
}
