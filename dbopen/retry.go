package dbopen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// busyBackoff is the wait schedule between retries of a statement that hit
// SQLITE_BUSY. A detection cycle writing observations can collide with API
// readers on the same file; WAL writers clear quickly, so the pauses stay
// short.
var busyBackoff = []time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	300 * time.Millisecond,
}

// IsBusy reports whether err is an SQLite BUSY/locked condition worth
// retrying. modernc.org/sqlite surfaces these as message text, not typed
// errors.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// RunTx executes fn inside a transaction, retrying the whole transaction
// per busyBackoff when SQLite reports the database busy. fn must be safe to
// re-run from the start.
func RunTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	return withBusyRetry(ctx, func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("dbopen: begin tx: %w", err)
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("dbopen: commit: %w", err)
		}
		return nil
	})
}

// Exec runs a single statement with the same busy-retry treatment.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := withBusyRetry(ctx, func() error {
		var execErr error
		res, execErr = db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func withBusyRetry(ctx context.Context, op func() error) error {
	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil || !IsBusy(err) {
			return err
		}
		if attempt >= len(busyBackoff) {
			return fmt.Errorf("dbopen: busy retries exhausted: %w", err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("dbopen: cancelled during busy retry: %w", ctx.Err())
		case <-time.After(busyBackoff[attempt]):
		}
	}
}
