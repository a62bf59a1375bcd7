// Package store persists extracted variant entries to a SQLite database
// for downstream querying.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/sovtools/sovgen/internal/sov"
)

const schema = `
CREATE TABLE IF NOT EXISTS bom_entries (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	variant      TEXT NOT NULL,
	customer_id  TEXT,
	product_id   TEXT,
	page         INTEGER,
	item_no      TEXT,
	level        INTEGER,
	part_number  TEXT,
	draw_no      TEXT,
	part_name    TEXT,
	display_name TEXT,
	note         TEXT,
	revision     TEXT,
	quantity     REAL,
	UNIQUE(variant, item_no, page)
)`

// Exporter writes variant extractions to SQLite.
type Exporter struct {
	log zerolog.Logger
}

// NewExporter creates a SQLite exporter.
func NewExporter(log zerolog.Logger) *Exporter {
	return &Exporter{log: log}
}

// Export replaces the database at dbPath with the entries of all given
// variants. Duplicate (variant, item_no, page) rows within one variant
// are ignored, matching the extraction's page-overlap behavior.
func (e *Exporter) Export(ctx context.Context, dbPath string, variants []sov.VariantRecord) error {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO bom_entries (
			variant, customer_id, product_id, page, item_no, level,
			part_number, draw_no, part_name, display_name, note,
			revision, quantity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	total := 0
	for _, v := range variants {
		for i := range v.Entries {
			ent := &v.Entries[i]
			var qty interface{}
			if ent.Quantity != nil {
				qty = *ent.Quantity
			}
			if _, err := stmt.ExecContext(ctx,
				v.Label, v.CustomerID, v.ProductID, ent.Page, ent.ItemIndex,
				ent.Level, ent.PartNumber, ent.DrawingNo, ent.PartName,
				ent.DisplayName, ent.Note, ent.Revision, qty,
			); err != nil {
				return fmt.Errorf("insert entry %s/%s: %w", v.Label, ent.ItemIndex, err)
			}
			total++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	e.log.Info().Str("path", dbPath).Int("entries", total).Msg("exported entries to database")
	return nil
}
