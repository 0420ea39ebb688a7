// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package facts persists verified-fact and suspicious-entry fingerprints so
// repeat verifications can reuse earlier conclusions.
// Implements: prd005-facts (R1-R7);
//
//	docs/ARCHITECTURE.md § Known-Facts Store.
package facts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/transparency-engine/pkg/types"
)

const dbFile = "facts.db"

// Store manages the known-facts SQLite database. Reads run on the shared
// connection; writes additionally serialize through a mutex so concurrent
// verification batches cannot lose upserts (R4.2).
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// VerifiedFact is a stored verification conclusion (R2.1).
type VerifiedFact struct {
	Fingerprint string    `json:"fingerprint"`
	Confidence  float64   `json:"confidence"`
	Methods     []string  `json:"verification_method"`
	StoredAt    time.Time `json:"stored_at"`
}

// SuspiciousEntry is a stored rejection (R2.2). Resolved entries stay in the
// table with the flag flipped; they are never physically removed, preserving
// the audit trail (R5.2).
type SuspiciousEntry struct {
	Fingerprint string    `json:"fingerprint"`
	Reason      string    `json:"reason"`
	FlaggedAt   time.Time `json:"flagged_at"`
	Resolved    bool      `json:"resolved"`
}

// Lookup is the result of a fingerprint probe: at most one of the fields is
// set. An unresolved suspicious entry shadows nothing — a fact stored later
// under the same fingerprint wins (R3.2).
type Lookup struct {
	Verified   *VerifiedFact
	Suspicious *SuspiciousEntry
}

// NewStore opens or creates the facts database at cfg.DataDir/facts.db and
// creates the schema if missing (R2.1, R2.2).
func NewStore(cfg types.FactsStoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening facts database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS verified_facts (
			fingerprint TEXT PRIMARY KEY,
			fact_data TEXT,
			confidence REAL NOT NULL,
			verification_method TEXT,
			stored_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS suspicious_entries (
			fingerprint TEXT PRIMARY KEY,
			entry_data TEXT,
			suspicion_reason TEXT,
			flagged_at TEXT NOT NULL,
			resolved INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_suspicious_resolved
			ON suspicious_entries(resolved)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Lookup probes a fingerprint. A stored verified fact takes precedence over
// an unresolved suspicious entry; resolved suspicious entries are invisible
// here (R3.1-R3.3).
func (s *Store) Lookup(ctx context.Context, fingerprint string) (Lookup, error) {
	var fact VerifiedFact
	var methods, storedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint, confidence, verification_method, stored_at
		 FROM verified_facts WHERE fingerprint = ?`, fingerprint,
	).Scan(&fact.Fingerprint, &fact.Confidence, &methods, &storedAt)
	switch {
	case err == nil:
		fact.Methods = splitMethods(methods)
		fact.StoredAt, _ = time.Parse(time.RFC3339Nano, storedAt)
		return Lookup{Verified: &fact}, nil
	case err != sql.ErrNoRows:
		return Lookup{}, fmt.Errorf("querying verified facts: %w", err)
	}

	var entry SuspiciousEntry
	var flaggedAt string
	err = s.db.QueryRowContext(ctx,
		`SELECT fingerprint, suspicion_reason, flagged_at
		 FROM suspicious_entries WHERE fingerprint = ? AND resolved = 0`, fingerprint,
	).Scan(&entry.Fingerprint, &entry.Reason, &flaggedAt)
	switch {
	case err == nil:
		entry.FlaggedAt, _ = time.Parse(time.RFC3339Nano, flaggedAt)
		return Lookup{Suspicious: &entry}, nil
	case err != sql.ErrNoRows:
		return Lookup{}, fmt.Errorf("querying suspicious entries: %w", err)
	}

	return Lookup{}, nil
}

// StoreVerified upserts a verified fact. Storing the same fingerprint twice
// overwrites; it never duplicates (R4.1).
func (s *Store) StoreVerified(ctx context.Context, fingerprint string, rec types.Record, confidence float64, methods []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, _ := json.Marshal(rec)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verified_facts (fingerprint, fact_data, confidence, verification_method, stored_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET
			fact_data=excluded.fact_data, confidence=excluded.confidence,
			verification_method=excluded.verification_method, stored_at=excluded.stored_at`,
		fingerprint, string(data), confidence, strings.Join(methods, "+"),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storing verified fact: %w", err)
	}
	return nil
}

// FlagSuspicious upserts a suspicious entry with the concrete reasons a
// record was rejected. Re-flagging resets the resolved flag (R4.3).
func (s *Store) FlagSuspicious(ctx context.Context, fingerprint string, rec types.Record, reasons []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, _ := json.Marshal(rec)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suspicious_entries (fingerprint, entry_data, suspicion_reason, flagged_at, resolved)
		 VALUES (?, ?, ?, ?, 0)
		 ON CONFLICT(fingerprint) DO UPDATE SET
			entry_data=excluded.entry_data, suspicion_reason=excluded.suspicion_reason,
			flagged_at=excluded.flagged_at, resolved=0`,
		fingerprint, string(data), strings.Join(reasons, "; "),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("flagging suspicious entry: %w", err)
	}
	return nil
}

// ResolveAllSuspicious soft-deletes every open suspicious entry and returns
// how many were resolved (R5.1, R5.2).
func (s *Store) ResolveAllSuspicious(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE suspicious_entries SET resolved = 1 WHERE resolved = 0`)
	if err != nil {
		return 0, fmt.Errorf("resolving suspicious entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats summarizes the store contents (R6.1).
type Stats struct {
	VerifiedFacts     int            `json:"verified_facts"`
	OpenSuspicious    int            `json:"suspicious_entries"`
	AverageConfidence float64        `json:"average_confidence"`
	TopMethods        map[string]int `json:"top_verification_methods"`
}

// ReadStats counts verified facts and open suspicious entries, averages the
// stored confidence, and tabulates the most frequent verification method
// combinations (R6.1, R6.2).
func (s *Store) ReadStats(ctx context.Context) (Stats, error) {
	stats := Stats{TopMethods: make(map[string]int)}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(confidence), 0) FROM verified_facts`,
	).Scan(&stats.VerifiedFacts, &stats.AverageConfidence)
	if err != nil {
		return Stats{}, fmt.Errorf("counting verified facts: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM suspicious_entries WHERE resolved = 0`,
	).Scan(&stats.OpenSuspicious)
	if err != nil {
		return Stats{}, fmt.Errorf("counting suspicious entries: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT verification_method, COUNT(*) FROM verified_facts
		 GROUP BY verification_method ORDER BY COUNT(*) DESC LIMIT 5`)
	if err != nil {
		return Stats{}, fmt.Errorf("tabulating verification methods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var method string
		var count int
		if err := rows.Scan(&method, &count); err != nil {
			return Stats{}, fmt.Errorf("scanning method row: %w", err)
		}
		stats.TopMethods[method] = count
	}
	return stats, rows.Err()
}

func splitMethods(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, "+")
}
