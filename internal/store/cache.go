// Package store provides the local SQLite cache of the user's library and
// recommendation pool. The cache lets the shelves view render instantly on
// startup and keeps the client readable offline; it is write-through on
// every fetch and never authoritative - the backend is.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // driver

	"github.com/nextreadapp/nextread-client/internal/domain"
)

// Cache is a SQLite-backed snapshot of backend state, keyed by user.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS shelf_entries (
	user_id  TEXT NOT NULL,
	entry_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	payload  TEXT NOT NULL,
	PRIMARY KEY (user_id, entry_id)
);

CREATE TABLE IF NOT EXISTS recommendations (
	user_id  TEXT NOT NULL,
	rec_id   TEXT NOT NULL,
	position INTEGER NOT NULL,
	payload  TEXT NOT NULL,
	PRIMARY KEY (user_id, rec_id)
);
`

// Open opens (creating if needed) the cache database at path.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// SQLite handles one writer at a time; keep the pool honest.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Cache{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveLibrary replaces the cached library for a user.
func (c *Cache) SaveLibrary(ctx context.Context, userID string, entries []domain.ShelfEntry) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM shelf_entries WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear cached library: %w", err)
	}
	for i, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entry %s: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shelf_entries (user_id, entry_id, position, payload) VALUES (?, ?, ?, ?)`,
			userID, e.ID, i, string(payload),
		); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// LoadLibrary returns the cached library for a user, oldest snapshot order
// preserved. An empty cache yields an empty slice, not an error.
func (c *Cache) LoadLibrary(ctx context.Context, userID string) ([]domain.ShelfEntry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT payload FROM shelf_entries WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cached library: %w", err)
	}
	defer rows.Close()

	var entries []domain.ShelfEntry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		var e domain.ShelfEntry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveRecommendations replaces the cached recommendation pool for a user.
func (c *Cache) SaveRecommendations(ctx context.Context, userID string, recs []domain.Recommendation) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear cached recommendations: %w", err)
	}
	for i, r := range recs {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode recommendation %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recommendations (user_id, rec_id, position, payload) VALUES (?, ?, ?, ?)`,
			userID, r.ID, i, string(payload),
		); err != nil {
			return fmt.Errorf("insert recommendation %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// LoadRecommendations returns the cached pool for a user.
func (c *Cache) LoadRecommendations(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT payload FROM recommendations WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cached recommendations: %w", err)
	}
	defer rows.Close()

	var recs []domain.Recommendation
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		var r domain.Recommendation
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("decode recommendation: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Clear drops everything cached for a user. Called on logout.
func (c *Cache) Clear(ctx context.Context, userID string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM shelf_entries WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear cached library: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM recommendations WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear cached recommendations: %w", err)
	}
	return nil
}
