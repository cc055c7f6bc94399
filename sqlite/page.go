package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docbot"
	"github.com/ncruces/go-sqlite3"
)

// Compile-time interface verification.
var _ docbot.PageService = (*PageService)(nil)

// PageService implements docbot.PageService using SQLite and FTS5.
type PageService struct {
	db *DB
}

// NewPageService creates a new PageService.
func NewPageService(db *DB) *PageService {
	return &PageService{db: db}
}

// hitColumns is the projection shared by every query returning hits.
const hitColumns = "url, lang, title, hpath, lead, headings, body_prefix"

// hashPage computes the xxHash of every indexed field.
func hashPage(p *docbot.Page) string {
	d := xxhash.New()
	for _, field := range []string{p.Language, p.Title, p.HeadingPath, p.Lead, p.Headings, p.BodyPrefix, p.Terms} {
		_, _ = d.WriteString(field)
		_, _ = d.Write([]byte{0})
	}
	return hex.EncodeToString(d.Sum(nil))
}

// UpsertPage inserts the page or replaces the stored page with the same URL.
// The content hash and, when unset, the fetch time are filled in on page.
func (s *PageService) UpsertPage(ctx context.Context, page *docbot.Page) (bool, error) {
	if err := page.Validate(); err != nil {
		return false, err
	}
	if page.FetchedAt.IsZero() {
		page.FetchedAt = time.Now()
	}
	page.FetchedAt = page.FetchedAt.UTC().Truncate(time.Second)
	page.ContentHash = hashPage(page)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var previous string
	err = tx.QueryRowContext(ctx, `SELECT content_hash FROM pages WHERE url = ?`, page.URL).Scan(&previous)
	found := true
	if errors.Is(err, sql.ErrNoRows) {
		found = false
	} else if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pages (url, lang, title, hpath, lead, headings, body_prefix, terms, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			lang = excluded.lang,
			title = excluded.title,
			hpath = excluded.hpath,
			lead = excluded.lead,
			headings = excluded.headings,
			body_prefix = excluded.body_prefix,
			terms = excluded.terms,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, page.URL, page.Language, page.Title, page.HeadingPath, page.Lead, page.Headings,
		page.BodyPrefix, page.Terms, page.ContentHash, page.FetchedAt.Format(time.RFC3339))
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return !found || previous != page.ContentHash, nil
}

// FindPageByURL retrieves a page by URL.
func (s *PageService) FindPageByURL(ctx context.Context, url string) (*docbot.Page, error) {
	var page docbot.Page
	var fetchedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT url, lang, title, hpath, lead, headings, body_prefix, terms, content_hash, fetched_at
		FROM pages
		WHERE url = ?
	`, url).Scan(&page.URL, &page.Language, &page.Title, &page.HeadingPath, &page.Lead,
		&page.Headings, &page.BodyPrefix, &page.Terms, &page.ContentHash, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, docbot.Errorf(docbot.ENOTFOUND, "page not found")
	}
	if err != nil {
		return nil, err
	}

	if page.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
		return nil, err
	}
	return &page, nil
}

// MatchPages runs a full-text match ordered by bm25, best first.
func (s *PageService) MatchPages(ctx context.Context, q docbot.MatchQuery) ([]*docbot.Hit, error) {
	if strings.TrimSpace(q.Expression) == "" {
		return nil, docbot.Errorf(docbot.EINVALID, "match expression required")
	}

	var query strings.Builder
	args := []any{q.Expression}

	query.WriteString("SELECT " + hitColumns + ", bm25(pages_fts) AS rank FROM pages_fts WHERE pages_fts MATCH ?")
	appendLanguage(&query, &args, "lang", q.Language)
	query.WriteString(" ORDER BY rank")
	appendLimit(&query, &args, q.Limit)

	hits, err := s.queryHits(ctx, query.String(), args...)
	// Expression syntax errors surface as generic SQLITE_ERROR.
	if errors.Is(err, sqlite3.ERROR) {
		return nil, docbot.Errorf(docbot.EINVALID, "invalid match expression %q", q.Expression)
	}
	return hits, err
}

// ContainsPages returns pages with q.Text in any text field. Title matches
// come first, then URL order.
func (s *PageService) ContainsPages(ctx context.Context, q docbot.ContainsQuery) ([]*docbot.Hit, error) {
	if q.Text == "" {
		return nil, docbot.Errorf(docbot.EINVALID, "search text required")
	}

	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + hitColumns + ", 0.0 FROM pages WHERE (")
	for i, column := range []string{"title", "headings", "hpath", "lead", "body_prefix"} {
		if i > 0 {
			query.WriteString(" OR ")
		}
		query.WriteString("instr(lower(" + column + "), lower(?)) > 0")
		args = append(args, q.Text)
	}
	query.WriteString(")")
	appendLanguage(&query, &args, "lang", q.Language)
	query.WriteString(" ORDER BY instr(lower(title), lower(?)) = 0, url")
	args = append(args, q.Text)
	appendLimit(&query, &args, q.Limit)

	return s.queryHits(ctx, query.String(), args...)
}

// PageStats counts indexed pages overall and per language.
func (s *PageService) PageStats(ctx context.Context) (*docbot.Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT lang, COUNT(*) FROM pages GROUP BY lang ORDER BY lang`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &docbot.Stats{ByLanguage: make(map[string]int)}
	for rows.Next() {
		var lang string
		var n int
		if err := rows.Scan(&lang, &n); err != nil {
			return nil, err
		}
		stats.ByLanguage[lang] = n
		stats.Pages += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *PageService) queryHits(ctx context.Context, query string, args ...any) ([]*docbot.Hit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var hits []*docbot.Hit
	for rows.Next() {
		var hit docbot.Hit
		if err := rows.Scan(&hit.URL, &hit.Language, &hit.Title, &hit.HeadingPath, &hit.Lead,
			&hit.Headings, &hit.BodyPrefix, &hit.Rank); err != nil {
			return nil, err
		}
		hits = append(hits, &hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	return hits, nil
}
