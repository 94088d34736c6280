package store

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/pricewatch/dbopen"
)

// AddObservation records one price point for a product.
func (s *Store) AddObservation(ctx context.Context, productID int64, price float64) (int64, error) {
	res, err := dbopen.Exec(ctx, s.db, `
		INSERT INTO observations (product_id, price, observed_at)
		VALUES (?, ?, ?)`,
		productID, price, millis(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("store: add observation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: observation id: %w", err)
	}
	return id, nil
}

// PriceHistory returns every recorded price for a product, oldest first.
// The id tiebreak keeps same-millisecond observations in insert order.
func (s *Store) PriceHistory(ctx context.Context, productID int64) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT price FROM observations
		WHERE product_id = ?
		ORDER BY observed_at ASC, id ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("store: price history: %w", err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("store: scan price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// RecentObservations returns up to limit observations for a product, most
// recent first.
func (s *Store) RecentObservations(ctx context.Context, productID int64, limit int) ([]Observation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, price, observed_at FROM observations
		WHERE product_id = ?
		ORDER BY observed_at DESC, id DESC
		LIMIT ?`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent observations: %w", err)
	}
	defer rows.Close()

	var obs []Observation
	for rows.Next() {
		var o Observation
		var at int64
		if err := rows.Scan(&o.ID, &o.ProductID, &o.Price, &at); err != nil {
			return nil, fmt.Errorf("store: scan observation: %w", err)
		}
		o.ObservedAt = fromMillis(at)
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// ObservationCount reports the total number of price points recorded.
func (s *Store) ObservationCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM observations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count observations: %w", err)
	}
	return n, nil
}
