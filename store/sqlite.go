package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS keywords (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	keyword    TEXT NOT NULL,
	project_id TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL,
	status     TEXT NOT NULL,
	sales      INTEGER,
	price      REAL,
	origin_url TEXT,
	shop_name  TEXT,
	shop_type  TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_keywords_project ON keywords(project_id, status);
`

// SQLiteSink stores keyword rows in a local sqlite database. The
// default and only sink with real persistence; the mining side of this
// tool is single-writer, so sqlite in WAL mode is plenty.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// modernc.org/sqlite serializes internally; one connection avoids
	// SQLITE_BUSY under concurrent API calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Insert writes rows in a single transaction and reports how many went
// in. All-or-nothing per chunk: a failed chunk inserts zero rows.
func (s *SQLiteSink) Insert(ctx context.Context, rows []KeywordRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO keywords
			(keyword, project_id, source, status, sales, price, origin_url, shop_name, shop_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.Keyword, r.ProjectID, r.Source, r.Status,
			r.Sales, r.Price, r.OriginURL, r.ShopName, r.ShopType,
		); err != nil {
			return 0, fmt.Errorf("insert keyword %q: %w", r.Keyword, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(rows), nil
}

// Count reports how many rows the keywords table holds.
func (s *SQLiteSink) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM keywords").Scan(&n)
	return n, err
}

// Close releases the database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
