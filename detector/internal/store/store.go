// Package store persists products, price observations, and cycle logs in
// SQLite. All timestamps are stored as Unix milliseconds.
package store

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/hazyhaar/pricewatch/idgen"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Store wraps the SQLite database. Safe for concurrent use.
type Store struct {
	db  *sql.DB
	log *slog.Logger
	ids idgen.Generator
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the Store's logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithIDGenerator overrides the cycle-log ID source.
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Store) { s.ids = g }
}

// New wraps db. Call ApplySchema before first use.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:  db,
		log: slog.Default(),
		ids: idgen.Prefixed("cyc_", idgen.Default),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Product is one tracked listing, unique per (SKU, Source).
type Product struct {
	ID        int64     `json:"id"`
	SKU       string    `json:"sku"`
	Source    string    `json:"source"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Observation is one price point for a product.
type Observation struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

// CycleRecord summarises one detection cycle over one site/category.
type CycleRecord struct {
	ID        string        `json:"id"`
	Site      string        `json:"site"`
	Category  string        `json:"category"`
	Scraped   int           `json:"scraped"`
	Stored    int           `json:"stored"`
	Anomalies int           `json:"anomalies"`
	Alerts    int           `json:"alerts"`
	Errors    int           `json:"errors"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
