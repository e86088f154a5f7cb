package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is a single tamper-evident record in the audit chain.
type Entry struct {
	ID           int64  `json:"id"`
	Timestamp    string `json:"timestamp"`
	PreviousHash string `json:"previous_hash"`
	Payload      string `json:"payload"`
	Hash         string `json:"hash"`
}

// ChainLog records wallet mutations as a hash chain persisted to sqlite.
// Each entry's hash covers the previous hash, so rewriting history breaks
// verification from that point forward.
type ChainLog struct {
	mu           sync.Mutex
	db           *sql.DB
	previousHash string
}

const chainSchema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	previous_hash TEXT NOT NULL,
	payload TEXT NOT NULL,
	hash TEXT NOT NULL
);`

// OpenChainLog opens (or creates) the sqlite-backed chain at path and resumes
// from the last persisted hash. Use ":memory:" for tests.
func OpenChainLog(path string) (*ChainLog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %w", err)
	}

	if _, err := db.Exec(chainSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	cl := &ChainLog{db: db, previousHash: strings.Repeat("0", 64)}

	var last sql.NullString
	err = db.QueryRow(`SELECT hash FROM audit_entries ORDER BY id DESC LIMIT 1`).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		db.Close()
		return nil, fmt.Errorf("failed to read chain head: %w", err)
	}
	if last.Valid {
		cl.previousHash = last.String
	}

	return cl, nil
}

// Append adds a payload to the chain and persists it.
func (c *ChainLog) Append(ctx context.Context, payload string) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &Entry{
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		PreviousHash: c.previousHash,
		Payload:      payload,
	}
	entry.Hash = entryHash(entry.PreviousHash, entry.Timestamp, entry.Payload)

	res, err := c.db.ExecContext(ctx, `
		INSERT INTO audit_entries (timestamp, previous_hash, payload, hash)
		VALUES (?, ?, ?, ?)
	`, entry.Timestamp, entry.PreviousHash, entry.Payload, entry.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to persist audit entry: %w", err)
	}

	entry.ID, _ = res.LastInsertId()
	c.previousHash = entry.Hash
	return entry, nil
}

// Entries returns up to limit entries in insertion order. limit <= 0 returns all.
func (c *ChainLog) Entries(ctx context.Context, limit int) ([]*Entry, error) {
	query := `SELECT id, timestamp, previous_hash, payload, hash FROM audit_entries ORDER BY id ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.PreviousHash, &e.Payload, &e.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// Verify re-walks the persisted chain and reports whether it is intact.
func (c *ChainLog) Verify(ctx context.Context) (bool, error) {
	entries, err := c.Entries(ctx, 0)
	if err != nil {
		return false, err
	}
	return VerifyChain(entries), nil
}

// Close closes the underlying database.
func (c *ChainLog) Close() error {
	return c.db.Close()
}

// VerifyChain checks that a slice of entries forms a valid hash chain.
func VerifyChain(entries []*Entry) bool {
	for i, entry := range entries {
		if i > 0 && entry.PreviousHash != entries[i-1].Hash {
			return false
		}
		if entryHash(entry.PreviousHash, entry.Timestamp, entry.Payload) != entry.Hash {
			return false
		}
	}
	return true
}

func entryHash(prev, ts, payload string) string {
	sum := sha256.Sum256([]byte(prev + "|" + ts + "|" + payload))
	return hex.EncodeToString(sum[:])
}
