package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/pavel-gr/protolab/pkg/wire"
)

// Validator handles configuration validation
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateConfig performs validation of the whole configuration
func (v *Validator) ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := v.ValidateDNSConfig(&config.DNS); err != nil {
		return fmt.Errorf("dns config validation failed: %w", err)
	}

	if err := v.ValidateDHCPConfig(&config.DHCP); err != nil {
		return fmt.Errorf("dhcp config validation failed: %w", err)
	}

	if err := v.ValidateJournalConfig(&config.Journal); err != nil {
		return fmt.Errorf("journal config validation failed: %w", err)
	}

	return nil
}

// ValidateDNSConfig validates the DNS client section
func (v *Validator) ValidateDNSConfig(config *DNSConfig) error {
	if config.Server == "" {
		return fmt.Errorf("dns server cannot be empty")
	}

	host, _, err := net.SplitHostPort(config.Server)
	if err != nil {
		return fmt.Errorf("invalid dns server address format: %w", err)
	}
	if net.ParseIP(host) == nil && host != "localhost" {
		return fmt.Errorf("invalid dns server host: %s", host)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("dns timeout must be positive")
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("dns max retries cannot be negative")
	}

	return nil
}

// ValidateDHCPConfig validates the DORA simulation section
func (v *Validator) ValidateDHCPConfig(config *DHCPConfig) error {
	for name, port := range map[string]int{
		"server_port": config.ServerPort,
		"client_port": config.ClientPort,
	} {
		if port < 1024 || port > 65535 {
			return fmt.Errorf("%s %d is not a non-privileged port", name, port)
		}
	}
	if config.ServerPort == config.ClientPort {
		return fmt.Errorf("server_port and client_port must differ")
	}

	for name, addr := range map[string]string{
		"offered_ip":  config.OfferedIP,
		"server_ip":   config.ServerIP,
		"subnet_mask": config.SubnetMask,
		"router":      config.Router,
		"dns_server":  config.DNSServer,
	} {
		if _, err := wire.ParseIPv4(addr); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("dhcp timeout must be positive")
	}
	if config.LeaseTime == 0 {
		return fmt.Errorf("lease_time must be positive")
	}

	if _, err := ParseMAC(config.MAC); err != nil {
		return fmt.Errorf("invalid mac: %w", err)
	}

	return nil
}

// ValidateJournalConfig validates the journal backend section
func (v *Validator) ValidateJournalConfig(config *JournalConfig) error {
	switch config.Type {
	case "", "memory":
		return nil
	case "surrealdb":
		if config.Endpoint == "" {
			return fmt.Errorf("surrealdb journal requires an endpoint")
		}
		if !strings.HasPrefix(config.Endpoint, "ws://") &&
			!strings.HasPrefix(config.Endpoint, "wss://") &&
			!strings.HasPrefix(config.Endpoint, "http://") &&
			!strings.HasPrefix(config.Endpoint, "https://") {
			return fmt.Errorf("surrealdb endpoint %q has an unsupported scheme", config.Endpoint)
		}
		return nil
	default:
		return fmt.Errorf("unknown journal type: %s", config.Type)
	}
}

// ParseMAC parses a colon-separated hardware address into 6 bytes.
func ParseMAC(s string) ([6]byte, error) {
	var mac [6]byte

	hw, err := net.ParseMAC(s)
	if err != nil {
		return mac, fmt.Errorf("%q is not a hardware address: %w", s, err)
	}
	if len(hw) != 6 {
		return mac, fmt.Errorf("hardware address %q is not 6 bytes", s)
	}

	copy(mac[:], hw)
	return mac, nil
}
