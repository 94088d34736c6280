package detector

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/hazyhaar/pricewatch/detector/internal/store"
)

// Aliases so callers outside the package (the HTTP API, the CLI) can work
// with storage types without reaching into internal packages.
type (
	Store       = store.Store
	Product     = store.Product
	Observation = store.Observation
	CycleRecord = store.CycleRecord
)

// ErrNotFound mirrors the storage sentinel for lookups.
var ErrNotFound = store.ErrNotFound

// OpenStore wraps db, migrates any legacy layout, and applies the current
// schema.
func OpenStore(ctx context.Context, db *sql.DB, log *slog.Logger) (*Store, error) {
	opts := []store.Option{}
	if log != nil {
		opts = append(opts, store.WithLogger(log))
	}
	st := store.New(db, opts...)
	if err := st.ApplySchema(ctx); err != nil {
		return nil, err
	}
	return st, nil
}
