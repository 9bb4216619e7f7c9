// Package journal records protocol exchanges the lab performs: DNS lookups
// and completed DORA leases. Backends are pluggable; memory is the default
// and SurrealDB is available for a persistent journal.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pavel-gr/protolab/internal/config"
)

var (
	// ErrClosed is returned when the journal has been closed
	ErrClosed = errors.New("journal is closed")
)

// LookupEntry records one DNS resolution
type LookupEntry struct {
	Domain     string    `json:"domain"`
	Type       string    `json:"record_type"`
	Server     string    `json:"server"`
	Answers    []string  `json:"answers"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// LeaseEntry records one completed DORA exchange
type LeaseEntry struct {
	MAC         string    `json:"mac"`
	XID         uint32    `json:"xid"`
	Address     string    `json:"address"`
	ServerID    string    `json:"server_id"`
	LeaseTime   uint32    `json:"lease_time"`
	CompletedAt time.Time `json:"completed_at"`
}

// Journal defines the interface for exchange journal backends
type Journal interface {
	// RecordLookup stores a DNS resolution entry
	RecordLookup(ctx context.Context, entry LookupEntry) error

	// RecordLease stores a completed DORA exchange entry
	RecordLease(ctx context.Context, entry LeaseEntry) error

	// Lookups returns all recorded lookups, oldest first
	Lookups(ctx context.Context) ([]LookupEntry, error)

	// Leases returns all recorded leases, oldest first
	Leases(ctx context.Context) ([]LeaseEntry, error)

	// Close closes the journal and releases its resources
	Close() error
}

// New creates a journal backend from configuration.
func New(ctx context.Context, cfg config.JournalConfig) (Journal, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryJournal(), nil
	case "surrealdb":
		return NewSurrealJournal(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
