// Package sqlite provides SQLite-based storage implementations for docbot services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Wait up to 5 seconds on lock contention instead of failing immediately.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the page table and its full-text index if they don't
// exist. pages_fts is an external-content table over pages; the triggers keep
// it in step with every write to pages inside the writing statement.
//
// A change to the indexed column set requires deleting the database file.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS pages (
			url TEXT PRIMARY KEY,
			lang TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			hpath TEXT NOT NULL DEFAULT '',
			lead TEXT NOT NULL DEFAULT '',
			headings TEXT NOT NULL DEFAULT '',
			body_prefix TEXT NOT NULL DEFAULT '',
			terms TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			fetched_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_pages_lang ON pages(lang);

		CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(
			url, lang UNINDEXED, title, hpath, lead, headings, body_prefix, terms,
			content='pages', content_rowid='rowid'
		);

		CREATE TRIGGER IF NOT EXISTS pages_ai AFTER INSERT ON pages BEGIN
			INSERT INTO pages_fts(rowid, url, lang, title, hpath, lead, headings, body_prefix, terms)
			VALUES (new.rowid, new.url, new.lang, new.title, new.hpath, new.lead, new.headings, new.body_prefix, new.terms);
		END;

		CREATE TRIGGER IF NOT EXISTS pages_ad AFTER DELETE ON pages BEGIN
			INSERT INTO pages_fts(pages_fts, rowid, url, lang, title, hpath, lead, headings, body_prefix, terms)
			VALUES ('delete', old.rowid, old.url, old.lang, old.title, old.hpath, old.lead, old.headings, old.body_prefix, old.terms);
		END;

		CREATE TRIGGER IF NOT EXISTS pages_au AFTER UPDATE ON pages BEGIN
			INSERT INTO pages_fts(pages_fts, rowid, url, lang, title, hpath, lead, headings, body_prefix, terms)
			VALUES ('delete', old.rowid, old.url, old.lang, old.title, old.hpath, old.lead, old.headings, old.body_prefix, old.terms);
			INSERT INTO pages_fts(rowid, url, lang, title, hpath, lead, headings, body_prefix, terms)
			VALUES (new.rowid, new.url, new.lang, new.title, new.hpath, new.lead, new.headings, new.body_prefix, new.terms);
		END;
	`

	_, err := db.db.Exec(schema)
	return err
}
