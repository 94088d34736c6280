package store

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/pricewatch/dbopen"
)

// LogCycle records one detection cycle's counters. A missing ID is filled
// from the Store's generator; the assigned ID is returned.
func (s *Store) LogCycle(ctx context.Context, rec CycleRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = s.ids()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	_, err := dbopen.Exec(ctx, s.db, `
		INSERT INTO cycle_log
			(id, site, category, scraped, stored, anomalies, alerts, errors, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Site, rec.Category,
		rec.Scraped, rec.Stored, rec.Anomalies, rec.Alerts, rec.Errors,
		rec.Duration.Milliseconds(), millis(rec.StartedAt))
	if err != nil {
		return "", fmt.Errorf("store: log cycle: %w", err)
	}
	return rec.ID, nil
}

// Cycles returns up to limit cycle records, most recent first.
func (s *Store) Cycles(ctx context.Context, limit int) ([]CycleRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site, category, scraped, stored, anomalies, alerts, errors, duration_ms, started_at
		FROM cycle_log
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list cycles: %w", err)
	}
	defer rows.Close()

	var recs []CycleRecord
	for rows.Next() {
		var r CycleRecord
		var durMS, started int64
		if err := rows.Scan(&r.ID, &r.Site, &r.Category,
			&r.Scraped, &r.Stored, &r.Anomalies, &r.Alerts, &r.Errors,
			&durMS, &started); err != nil {
			return nil, fmt.Errorf("store: scan cycle: %w", err)
		}
		r.Duration = time.Duration(durMS) * time.Millisecond
		r.StartedAt = fromMillis(started)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
