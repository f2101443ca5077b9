package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Cache is a local SQLite cache of external enrichment responses, so
// re-runs over the same companies do not re-spend rate-limited API calls.
type Cache struct {
	db *sql.DB
}

// NewCache opens (or creates) the cache database at path in WAL mode.
func NewCache(path string) (*Cache, error) {
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sdb.Exec(pragma); err != nil {
			sdb.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	return &Cache{db: sdb}, nil
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS profile_cache (
	domain     TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	data       TEXT NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_profile_cache_expires_at ON profile_cache(expires_at);
`

// Migrate creates the cache schema.
func (c *Cache) Migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, cacheMigration)
	return eris.Wrap(err, "cache: migrate")
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetProfile returns the cached response for a domain, or nil on a miss
// (including expiry). A miss is not an error.
func (c *Cache) GetProfile(ctx context.Context, domain string) ([]byte, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT data FROM profile_cache
		 WHERE domain = ? AND expires_at > datetime('now')`,
		domain,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: get profile %s", domain)
	}
	return data, nil
}

// SetProfile stores a response for a domain with a TTL, replacing any
// prior entry.
func (c *Cache) SetProfile(ctx context.Context, domain, source string, data []byte, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO profile_cache (domain, source, data, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (domain) DO UPDATE
		 SET source = excluded.source, data = excluded.data,
		     fetched_at = excluded.fetched_at, expires_at = excluded.expires_at`,
		domain, source, data, now, now.Add(ttl),
	)
	return eris.Wrapf(err, "cache: set profile %s", domain)
}

// Prune deletes expired entries and reports how many were removed.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM profile_cache WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, eris.Wrap(err, "cache: prune")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "cache: prune rows affected")
}
