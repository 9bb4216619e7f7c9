package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pavel-gr/protolab/internal/config"
)

func TestServerConfigFrom(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.DHCPConfig
		expectError bool
	}{
		{
			name: "valid addresses",
			cfg: config.DHCPConfig{
				OfferedIP:  "192.168.1.100",
				ServerIP:   "192.168.1.1",
				SubnetMask: "255.255.255.0",
				Router:     "192.168.1.1",
				DNSServer:  "8.8.8.8",
				LeaseTime:  3600,
				Timeout:    time.Second,
			},
			expectError: false,
		},
		{
			name: "malformed offered address",
			cfg: config.DHCPConfig{
				OfferedIP:  "192.168.1",
				ServerIP:   "192.168.1.1",
				SubnetMask: "255.255.255.0",
				Router:     "192.168.1.1",
				DNSServer:  "8.8.8.8",
			},
			expectError: true,
		},
		{
			name: "octet out of range",
			cfg: config.DHCPConfig{
				OfferedIP:  "192.168.1.100",
				ServerIP:   "192.168.1.1",
				SubnetMask: "255.255.255.0",
				Router:     "192.168.1.1",
				DNSServer:  "8.8.8.300",
			},
			expectError: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := serverConfigFrom(&test.cfg)

			if test.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if out.OfferedIP != [4]byte{192, 168, 1, 100} {
				t.Errorf("Offered address mismatch: got %v", out.OfferedIP)
			}
			if out.SubnetMask != [4]byte{255, 255, 255, 0} {
				t.Errorf("Subnet mask mismatch: got %v", out.SubnetMask)
			}
			if out.LeaseTime != 3600 {
				t.Errorf("Lease time mismatch: got %d", out.LeaseTime)
			}
			if out.Timeout != time.Second {
				t.Errorf("Timeout mismatch: got %v", out.Timeout)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		defaults := config.DefaultConfig()
		if cfg.DNS.Server != defaults.DNS.Server {
			t.Errorf("Expected default DNS server %s, got %s", defaults.DNS.Server, cfg.DNS.Server)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "protolab.yaml")
		content := "dns:\n  server: \"1.1.1.1:53\"\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		cfg := loadConfig(path)
		if cfg.DNS.Server != "1.1.1.1:53" {
			t.Errorf("Expected overridden DNS server, got %s", cfg.DNS.Server)
		}
	})
}
