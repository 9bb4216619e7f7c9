package journal

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"

	"github.com/pavel-gr/protolab/internal/config"
)

// SurrealJournal implements the Journal interface using SurrealDB
type SurrealJournal struct {
	db     *surrealdb.DB
	closed bool
}

// NewSurrealJournal connects to SurrealDB, selects the configured
// namespace and database, authenticates when credentials are present, and
// initializes the journal schema.
func NewSurrealJournal(ctx context.Context, cfg config.JournalConfig) (*SurrealJournal, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "protolab"
	}
	database := cfg.Database
	if database == "" {
		database = "journal"
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	if cfg.Username != "" && cfg.Password != "" {
		auth := surrealdb.Auth{
			Namespace: namespace,
			Database:  database,
			Username:  cfg.Username,
			Password:  cfg.Password,
		}
		if _, err := db.SignIn(ctx, auth); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("authentication failed: %w", err)
		}
	}

	journal := &SurrealJournal{db: db}
	if err := journal.initSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return journal, nil
}

// initSchema creates the journal tables
func (j *SurrealJournal) initSchema(ctx context.Context) error {
	schemaQueries := []string{
		`DEFINE TABLE IF NOT EXISTS lookups SCHEMAFULL;`,
		`DEFINE FIELD IF NOT EXISTS domain ON lookups TYPE string;`,
		`DEFINE FIELD IF NOT EXISTS record_type ON lookups TYPE string;`,
		`DEFINE FIELD IF NOT EXISTS server ON lookups TYPE string;`,
		`DEFINE FIELD IF NOT EXISTS answers ON lookups TYPE array<string>;`,
		`DEFINE FIELD IF NOT EXISTS resolved_at ON lookups TYPE datetime;`,
		`DEFINE INDEX IF NOT EXISTS lookup_domain_idx ON lookups FIELDS domain;`,

		`DEFINE TABLE IF NOT EXISTS leases SCHEMAFULL;`,
		`DEFINE FIELD IF NOT EXISTS mac ON leases TYPE string;`,
		`DEFINE FIELD IF NOT EXISTS xid ON leases TYPE int;`,
		`DEFINE FIELD IF NOT EXISTS address ON leases TYPE string;`,
		`DEFINE FIELD IF NOT EXISTS server_id ON leases TYPE string;`,
		`DEFINE FIELD IF NOT EXISTS lease_time ON leases TYPE int;`,
		`DEFINE FIELD IF NOT EXISTS completed_at ON leases TYPE datetime;`,
		`DEFINE INDEX IF NOT EXISTS lease_mac_idx ON leases FIELDS mac;`,
	}

	for _, query := range schemaQueries {
		if _, err := surrealdb.Query[any](ctx, j.db, query, nil); err != nil {
			return err
		}
	}

	return nil
}

// RecordLookup stores a DNS resolution entry
func (j *SurrealJournal) RecordLookup(ctx context.Context, entry LookupEntry) error {
	if j.closed {
		return ErrClosed
	}

	query := `CREATE lookups SET
		domain = $domain,
		record_type = $record_type,
		server = $server,
		answers = $answers,
		resolved_at = <datetime>$resolved_at`
	vars := map[string]any{
		"domain":      entry.Domain,
		"record_type": entry.Type,
		"server":      entry.Server,
		"answers":     entry.Answers,
		"resolved_at": entry.ResolvedAt,
	}

	if _, err := surrealdb.Query[any](ctx, j.db, query, vars); err != nil {
		return fmt.Errorf("failed to record lookup: %w", err)
	}

	return nil
}

// RecordLease stores a completed DORA exchange entry
func (j *SurrealJournal) RecordLease(ctx context.Context, entry LeaseEntry) error {
	if j.closed {
		return ErrClosed
	}

	query := `CREATE leases SET
		mac = $mac,
		xid = $xid,
		address = $address,
		server_id = $server_id,
		lease_time = $lease_time,
		completed_at = <datetime>$completed_at`
	vars := map[string]any{
		"mac":          entry.MAC,
		"xid":          int64(entry.XID),
		"address":      entry.Address,
		"server_id":    entry.ServerID,
		"lease_time":   int64(entry.LeaseTime),
		"completed_at": entry.CompletedAt,
	}

	if _, err := surrealdb.Query[any](ctx, j.db, query, vars); err != nil {
		return fmt.Errorf("failed to record lease: %w", err)
	}

	return nil
}

// Lookups returns all recorded lookups, oldest first
func (j *SurrealJournal) Lookups(ctx context.Context) ([]LookupEntry, error) {
	if j.closed {
		return nil, ErrClosed
	}

	query := "SELECT * FROM lookups ORDER BY resolved_at ASC"
	result, err := surrealdb.Query[[]LookupEntry](ctx, j.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list lookups: %w", err)
	}

	if len(*result) == 0 {
		return []LookupEntry{}, nil
	}
	return (*result)[0].Result, nil
}

// Leases returns all recorded leases, oldest first
func (j *SurrealJournal) Leases(ctx context.Context) ([]LeaseEntry, error) {
	if j.closed {
		return nil, ErrClosed
	}

	query := "SELECT * FROM leases ORDER BY completed_at ASC"
	result, err := surrealdb.Query[[]LeaseEntry](ctx, j.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}

	if len(*result) == 0 {
		return []LeaseEntry{}, nil
	}
	return (*result)[0].Result, nil
}

// Close closes the database connection
func (j *SurrealJournal) Close() error {
	if j.closed {
		return nil
	}

	j.closed = true
	return j.db.Close(context.Background())
}

// Ensure SurrealJournal implements the Journal interface
var _ Journal = (*SurrealJournal)(nil)
