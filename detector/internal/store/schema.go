package store

import (
	"context"
	"fmt"
)

// Schema is the current database layout. Timestamps are Unix milliseconds;
// products are unique per (sku, source) because the same SKU can appear on
// multiple retailers.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	sku         TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT 'amazon',
	title       TEXT NOT NULL,
	url         TEXT,
	first_seen  INTEGER NOT NULL,
	last_seen   INTEGER NOT NULL,
	UNIQUE (sku, source)
);

CREATE INDEX IF NOT EXISTS idx_products_source ON products(source);
CREATE INDEX IF NOT EXISTS idx_products_last_seen ON products(last_seen);

CREATE TABLE IF NOT EXISTS observations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id  INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	price       REAL NOT NULL,
	observed_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_observations_product ON observations(product_id);
CREATE INDEX IF NOT EXISTS idx_observations_observed_at ON observations(observed_at);

CREATE TABLE IF NOT EXISTS cycle_log (
	id          TEXT PRIMARY KEY,
	site        TEXT NOT NULL,
	category    TEXT NOT NULL,
	scraped     INTEGER NOT NULL DEFAULT 0,
	stored      INTEGER NOT NULL DEFAULT 0,
	anomalies   INTEGER NOT NULL DEFAULT 0,
	alerts      INTEGER NOT NULL DEFAULT 0,
	errors      INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	started_at  INTEGER NOT NULL
);
`

// ApplySchema migrates any legacy layout first, then creates the current
// tables. Idempotent; called on every startup.
func (s *Store) ApplySchema(ctx context.Context) error {
	if err := s.migrateLegacy(ctx); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("store: apply schema: %w", err)
	}
	return nil
}

// VerifySchema reports whether the expected tables exist.
func (s *Store) VerifySchema(ctx context.Context) error {
	for _, table := range []string{"products", "observations", "cycle_log"} {
		var name string
		err := s.db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			return fmt.Errorf("store: missing table %s: %w", table, err)
		}
	}
	return nil
}
