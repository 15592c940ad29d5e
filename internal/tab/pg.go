package tab

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PGStorage keeps the tab collection in Postgres for deployments where
// several terminals share the same open-tab list.
type PGStorage struct{ db *pgxpool.Pool }

func NewPGStorage(db *pgxpool.Pool) *PGStorage { return &PGStorage{db: db} }

// Init creates the tab tables when they do not exist yet.
func (r *PGStorage) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS open_tabs (
			position     INT NOT NULL,
			table_number TEXT PRIMARY KEY
		)`); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS open_tab_items (
			table_number TEXT NOT NULL REFERENCES open_tabs(table_number) ON DELETE CASCADE,
			position     INT NOT NULL,
			product_id   BIGINT NOT NULL,
			product_name TEXT NOT NULL,
			category     TEXT NOT NULL,
			price        NUMERIC(10,2) NOT NULL,
			quantity     INT NOT NULL,
			total        NUMERIC(10,2) NOT NULL,
			note         TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (table_number, position)
		)`)
	return err
}

func (r *PGStorage) Load(ctx context.Context) ([]Tab, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT table_number FROM open_tabs ORDER BY position`)
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
		items, err := r.loadItems(ctx, tabs[i].TableNumber)
		if err != nil {
			return nil, err
		}
		tabs[i].Items = items
	}
	return tabs, nil
}

func (r *PGStorage) loadItems(ctx context.Context, tableNumber string) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_id, product_name, category, price::text, quantity, total::text, note
		FROM open_tab_items WHERE table_number=$1 ORDER BY position`, tableNumber)
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
			return nil, err
		}
		if li.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func (r *PGStorage) Save(ctx context.Context, tabs []Tab) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM open_tab_items`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM open_tabs`); err != nil {
		return err
	}
	for ti, t := range tabs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO open_tabs (position, table_number) VALUES ($1,$2)`, ti, t.TableNumber); err != nil {
			return err
		}
		for ii, li := range t.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO open_tab_items (table_number, position, product_id, product_name, category, price, quantity, total, note)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				t.TableNumber, ii, li.ProductID, li.ProductName, li.Category,
				li.Price.String(), li.Quantity, li.Total.String(), li.Note); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}
