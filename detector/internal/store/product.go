package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/pricewatch/dbopen"
)

// UpsertProduct inserts a product or refreshes an existing one, returning
// its row id. first_seen is preserved across updates; the URL is replaced
// only when the new value is non-empty, so a listing that temporarily
// hides its link keeps the last known one.
func (s *Store) UpsertProduct(ctx context.Context, sku, source, title, url string) (int64, error) {
	now := millis(time.Now())

	var id int64
	err := dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO products (sku, source, title, url, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (sku, source) DO UPDATE SET
				title     = excluded.title,
				url       = COALESCE(NULLIF(excluded.url, ''), products.url),
				last_seen = excluded.last_seen`,
			sku, source, title, url, now, now)
		if err != nil {
			return fmt.Errorf("upsert product %s/%s: %w", source, sku, err)
		}
		return tx.QueryRow(
			`SELECT id FROM products WHERE sku = ? AND source = ?`, sku, source,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	return id, nil
}

// ProductByID returns one product.
func (s *Store) ProductByID(ctx context.Context, id int64) (*Product, error) {
	return s.scanProduct(s.db.QueryRowContext(ctx, `
		SELECT id, sku, source, title, COALESCE(url, ''), first_seen, last_seen
		FROM products WHERE id = ?`, id))
}

// ProductBySKU returns one product by its (sku, source) identity.
func (s *Store) ProductBySKU(ctx context.Context, sku, source string) (*Product, error) {
	return s.scanProduct(s.db.QueryRowContext(ctx, `
		SELECT id, sku, source, title, COALESCE(url, ''), first_seen, last_seen
		FROM products WHERE sku = ? AND source = ?`, sku, source))
}

// Products lists every tracked product, most recently seen first.
func (s *Store) Products(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, source, title, COALESCE(url, ''), first_seen, last_seen
		FROM products ORDER BY last_seen DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		var first, last int64
		if err := rows.Scan(&p.ID, &p.SKU, &p.Source, &p.Title, &p.URL, &first, &last); err != nil {
			return nil, fmt.Errorf("store: scan product: %w", err)
		}
		p.FirstSeen = fromMillis(first)
		p.LastSeen = fromMillis(last)
		products = append(products, p)
	}
	return products, rows.Err()
}

// ProductCount reports how many products are tracked.
func (s *Store) ProductCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count products: %w", err)
	}
	return n, nil
}

func (s *Store) scanProduct(row *sql.Row) (*Product, error) {
	var p Product
	var first, last int64
	err := row.Scan(&p.ID, &p.SKU, &p.Source, &p.Title, &p.URL, &first, &last)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan product: %w", err)
	}
	p.FirstSeen = fromMillis(first)
	p.LastSeen = fromMillis(last)
	return &p, nil
}
