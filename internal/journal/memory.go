package journal

import (
	"context"
	"sync"
)

// MemoryJournal implements the Journal interface in memory
type MemoryJournal struct {
	mu      sync.RWMutex
	lookups []LookupEntry
	leases  []LeaseEntry
	closed  bool
}

// NewMemoryJournal creates a new in-memory journal instance
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// RecordLookup stores a DNS resolution entry
func (j *MemoryJournal) RecordLookup(ctx context.Context, entry LookupEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	j.lookups = append(j.lookups, entry)
	return nil
}

// RecordLease stores a completed DORA exchange entry
func (j *MemoryJournal) RecordLease(ctx context.Context, entry LeaseEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	j.leases = append(j.leases, entry)
	return nil
}

// Lookups returns all recorded lookups, oldest first
func (j *MemoryJournal) Lookups(ctx context.Context) ([]LookupEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return nil, ErrClosed
	}

	// Return a copy to prevent external modifications
	result := make([]LookupEntry, len(j.lookups))
	copy(result, j.lookups)
	return result, nil
}

// Leases returns all recorded leases, oldest first
func (j *MemoryJournal) Leases(ctx context.Context) ([]LeaseEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return nil, ErrClosed
	}

	result := make([]LeaseEntry, len(j.leases))
	copy(result, j.leases)
	return result, nil
}

// Close closes the journal
func (j *MemoryJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.closed = true
	return nil
}

// Ensure MemoryJournal implements the Journal interface
var _ Journal = (*MemoryJournal)(nil)
