package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/pricewatch/dbopen"
)

// migrateLegacy converts the first-generation layout (an Amazon-only
// "items" table keyed by asin, with "price_history") into the current
// products/observations tables. Legacy timestamps were SQLite datetime
// strings; they are converted to Unix milliseconds in place.
//
// The whole conversion runs in one transaction and ends by dropping the
// legacy tables, so it happens at most once.
func (s *Store) migrateLegacy(ctx context.Context) error {
	exists, err := s.tableExists(ctx, "items")
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	cols, err := s.tableColumns(ctx, "items")
	if err != nil {
		return err
	}
	keyCol := "sku"
	if _, ok := cols["asin"]; ok {
		keyCol = "asin"
	}
	sourceExpr := "'amazon'"
	if _, ok := cols["source"]; ok {
		sourceExpr = "source"
	}

	s.log.Info("migrating legacy price database",
		"key_column", keyCol, "has_source", sourceExpr == "source")

	now := millis(time.Now())
	return dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(Schema); err != nil {
			return fmt.Errorf("create current tables: %w", err)
		}

		// strftime handles the legacy datetime strings; a NULL result
		// (unparseable or missing) falls back to the migration time.
		insertProducts := fmt.Sprintf(`
			INSERT INTO products (id, sku, source, title, url, first_seen, last_seen)
			SELECT id, %s, %s, title, url,
				COALESCE(CAST(strftime('%%s', first_seen) AS INTEGER) * 1000, ?),
				COALESCE(CAST(strftime('%%s', last_seen) AS INTEGER) * 1000, ?)
			FROM items`, keyCol, sourceExpr)
		if _, err := tx.Exec(insertProducts, now, now); err != nil {
			return fmt.Errorf("copy items: %w", err)
		}

		if historyExists, err := tableExistsTx(tx, "price_history"); err != nil {
			return err
		} else if historyExists {
			if _, err := tx.Exec(`
				INSERT INTO observations (id, product_id, price, observed_at)
				SELECT id, item_id, price,
					COALESCE(CAST(strftime('%s', scraped_at) AS INTEGER) * 1000, ?)
				FROM price_history`, now); err != nil {
				return fmt.Errorf("copy price history: %w", err)
			}
			if _, err := tx.Exec(`DROP TABLE price_history`); err != nil {
				return fmt.Errorf("drop price_history: %w", err)
			}
		}

		if _, err := tx.Exec(`DROP TABLE items`); err != nil {
			return fmt.Errorf("drop items: %w", err)
		}
		return nil
	})
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return true, nil
}

func tableExistsTx(tx *sql.Tx, name string) (bool, error) {
	var found string
	err := tx.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) tableColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = struct{}{}
	}
	return cols, rows.Err()
}
