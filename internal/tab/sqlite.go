package tab

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tabs (
	position     INTEGER NOT NULL,
	table_number TEXT    NOT NULL PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS tab_items (
	table_number TEXT    NOT NULL REFERENCES tabs(table_number) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	product_id   INTEGER NOT NULL,
	product_name TEXT    NOT NULL,
	category     TEXT    NOT NULL DEFAULT '',
	price        TEXT    NOT NULL,
	quantity     INTEGER NOT NULL,
	total        TEXT    NOT NULL,
	note         TEXT    NOT NULL DEFAULT ''
);`

// SQLiteStorage keeps the tab collection in a local device database.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Close() error { return s.db.Close() }

func (s *SQLiteStorage) Load(ctx context.Context) ([]Tab, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_number FROM tabs ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tabs []Tab
	for rows.Next() {
		var t Tab
		if err := rows.Scan(&t.TableNumber); err != nil {
			return nil, err
		}
		tabs = append(tabs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tabs {
		items, err := s.loadItems(ctx, tabs[i].TableNumber)
		if err != nil {
			return nil, err
		}
		tabs[i].Items = items
	}
	return tabs, nil
}

func (s *SQLiteStorage) loadItems(ctx context.Context, tableNumber string) ([]LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, category, price, quantity, total, note
		FROM tab_items WHERE table_number = ? ORDER BY position`, tableNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var li LineItem
		var price, total string
		if err := rows.Scan(&li.ProductID, &li.ProductName, &li.Category, &price, &li.Quantity, &total, &li.Note); err != nil {
			return nil, err
		}
		if li.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("bad price %q: %w", price, err)
		}
		if li.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("bad total %q: %w", total, err)
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// Save replaces the persisted collection wholesale inside one transaction;
// the in-memory store is the writer, so a full rewrite keeps ordering exact.
func (s *SQLiteStorage) Save(ctx context.Context, tabs []Tab) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tab_items`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tabs`); err != nil {
		return err
	}
	for ti, t := range tabs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tabs (position, table_number) VALUES (?, ?)`, ti, t.TableNumber); err != nil {
			return err
		}
		for ii, li := range t.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO tab_items (table_number, position, product_id, product_name, category, price, quantity, total, note)
				VALUES (?,?,?,?,?,?,?,?,?)`,
				t.TableNumber, ii, li.ProductID, li.ProductName, li.Category,
				li.Price.String(), li.Quantity, li.Total.String(), li.Note); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}
