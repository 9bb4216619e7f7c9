package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration structure
type Config struct {
	DNS     DNSConfig     `yaml:"dns"`
	DHCP    DHCPConfig    `yaml:"dhcp"`
	Journal JournalConfig `yaml:"journal"`
	Logging LoggingConfig `yaml:"logging"`
}

// DNSConfig holds the DNS client configuration
type DNSConfig struct {
	Server     string        `yaml:"server"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// DHCPConfig holds the DORA simulation configuration. The simulation binds
// non-privileged ports and unicasts over localhost instead of the standard
// 67/68 broadcast behavior.
type DHCPConfig struct {
	ServerPort int           `yaml:"server_port"`
	ClientPort int           `yaml:"client_port"`
	Timeout    time.Duration `yaml:"timeout"`

	OfferedIP  string `yaml:"offered_ip"`
	ServerIP   string `yaml:"server_ip"`
	SubnetMask string `yaml:"subnet_mask"`
	Router     string `yaml:"router"`
	DNSServer  string `yaml:"dns_server"`
	LeaseTime  uint32 `yaml:"lease_time"`

	MAC string `yaml:"mac"`
}

// JournalConfig holds lookup journal backend configuration
type JournalConfig struct {
	Type      string `yaml:"type"` // "memory", "surrealdb"
	Endpoint  string `yaml:"endpoint"`
	Namespace string `yaml:"namespace"`
	Database  string `yaml:"database"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"` // enables packet hex dumps
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DNS: DNSConfig{
			Server:     "8.8.8.8:53",
			Timeout:    5 * time.Second,
			MaxRetries: 2,
		},
		DHCP: DHCPConfig{
			ServerPort: 6700,
			ClientPort: 6800,
			Timeout:    5 * time.Second,
			OfferedIP:  "192.168.1.100",
			ServerIP:   "192.168.1.1",
			SubnetMask: "255.255.255.0",
			Router:     "192.168.1.1",
			DNSServer:  "8.8.8.8",
			LeaseTime:  86400,
			MAC:        "AA:BB:CC:DD:EE:FF",
		},
		Journal: JournalConfig{
			Type:      "memory",
			Namespace: "protolab",
			Database:  "journal",
		},
		Logging: LoggingConfig{
			Verbose: false,
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	return NewValidator().ValidateConfig(c)
}

// IsJournalMemory returns true if the journal type is memory
func (c *Config) IsJournalMemory() bool {
	return c.Journal.Type == "memory"
}

// IsJournalSurrealDB returns true if the journal type is SurrealDB
func (c *Config) IsJournalSurrealDB() bool {
	return c.Journal.Type == "surrealdb"
}
