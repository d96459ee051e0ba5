// Package store provides a local SQLite cache for expensive lookups so a
// resumed pipeline does not re-spend API calls on companies it already
// resolved. Cache failures are never fatal; callers treat them as misses.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS lookup_cache (
	kind       TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL,
	PRIMARY KEY (kind, key)
);
`

// Cache is a TTL key-value cache keyed by (kind, key).
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open cache db")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "store: create schema")
	}
	return &Cache{db: db, now: time.Now}, nil
}

// Get returns the cached value for (kind, key). Expired or absent entries
// report ok == false.
func (c *Cache) Get(ctx context.Context, kind, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM lookup_cache WHERE kind = ? AND key = ?`,
		kind, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "store: cache get")
	}
	if c.now().Unix() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

// Put stores value under (kind, key) with the given TTL, replacing any
// previous entry.
func (c *Cache) Put(ctx context.Context, kind, key string, value []byte, ttl time.Duration) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO lookup_cache (kind, key, value, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (kind, key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		kind, key, value, c.now().Add(ttl).Unix(),
	)
	if err != nil {
		return eris.Wrap(err, "store: cache put")
	}
	return nil
}

// Prune deletes expired entries.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM lookup_cache WHERE expires_at <= ?`, c.now().Unix())
	if err != nil {
		return 0, eris.Wrap(err, "store: cache prune")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
