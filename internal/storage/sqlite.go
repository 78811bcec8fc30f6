package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"noticeboard/internal/model"
	"noticeboard/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ListListings returns every listing, newest first.
func (s *SQLite) ListListings(ctx context.Context) ([]model.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, created_at, doc FROM listings ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// GetListing returns a single listing by its ID.
func (s *SQLite) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, created_at, doc FROM listings WHERE id = ?`, id,
	)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// SaveListing inserts or replaces a listing document.
func (s *SQLite) SaveListing(ctx context.Context, l model.Listing) error {
	return saveListing(ctx, s.db, l)
}

// SaveListings replaces several listings in one transaction.
func (s *SQLite) SaveListings(ctx context.Context, ls []model.Listing) error {
	if len(ls) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range ls {
		if err := saveListing(ctx, tx, l); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteListing removes a listing, its receipts and its reports.
func (s *SQLite) DeleteListing(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_reports WHERE listing_id = ?`, id); err != nil {
		return fmt.Errorf("delete listing_reports: %w", err)
	}
	return tx.Commit()
}

// CreatePost inserts a new post.
func (s *SQLite) CreatePost(ctx context.Context, p model.Post) error {
	return insertPost(ctx, s.db, p)
}

// UpsertPost inserts a post or, when a post with the same Source already
// exists, refreshes its text while keeping its ID and engagement counters.
func (s *SQLite) UpsertPost(ctx context.Context, p model.Post) (bool, error) {
	if p.Source == "" {
		if err := s.CreatePost(ctx, p); err != nil {
			return false, err
		}
		return true, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT id, category, timestamp, doc FROM posts WHERE source = ?`, p.Source,
	)
	existing, err := scanPost(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := insertPost(ctx, tx, p); err != nil {
			return false, err
		}
		return true, tx.Commit()
	case err != nil:
		return false, err
	}

	existing.Title = p.Title
	existing.Message = p.Message
	existing.Link = p.Link
	doc, err := json.Marshal(existing)
	if err != nil {
		return false, fmt.Errorf("encode post: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE posts SET doc = ? WHERE id = ?`, string(doc), existing.ID); err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}
	return false, tx.Commit()
}

// ListPosts returns every post, newest first.
func (s *SQLite) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, timestamp, doc FROM posts ORDER BY timestamp DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ReportListing records a report of a listing by a user for a day and bumps
// the listing's report count in the same transaction. It returns false, with
// nothing written, when the user already reported the listing that day.
func (s *SQLite) ReportListing(ctx context.Context, listingID, userID, day string) (*model.Listing, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO listing_reports (listing_id, user_id, day) VALUES (?, ?, ?)`,
		listingID, userID, day,
	)
	if err != nil {
		return nil, false, fmt.Errorf("record report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, false, nil
	}

	row := tx.QueryRowContext(ctx,
		`SELECT id, owner_id, created_at, doc FROM listings WHERE id = ?`, listingID,
	)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("listing %s: %w", listingID, ErrNotFound)
	}
	if err != nil {
		return nil, false, err
	}

	l.ReportCount++
	if err := saveListing(ctx, tx, l); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit report: %w", err)
	}
	return &l, true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveListing(ctx context.Context, db execer, l model.Listing) error {
	doc, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO listings (id, owner_id, created_at, doc) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET owner_id = excluded.owner_id,
		   created_at = excluded.created_at, doc = excluded.doc`,
		l.ID, l.OwnerID, formatTime(l.CreatedAt), string(doc),
	)
	if err != nil {
		return fmt.Errorf("save listing %s: %w", l.ID, err)
	}
	return nil
}

func insertPost(ctx context.Context, db execer, p model.Post) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO posts (id, category, timestamp, source, doc) VALUES (?, ?, ?, ?, ?)`,
		p.ID, string(p.Category), formatTime(p.Timestamp), p.Source, string(doc),
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type scannable interface {
	Scan(dest ...any) error
}

// scanListing decodes a listing row. A document that fails to decode is
// replaced by a bare listing built from the indexed columns, with no
// placements and no receipts.
func scanListing(row scannable) (model.Listing, error) {
	var id, owner, created, doc string
	if err := row.Scan(&id, &owner, &created, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Listing{}, err
		}
		return model.Listing{}, fmt.Errorf("scan listing: %w", err)
	}

	var l model.Listing
	if err := json.Unmarshal([]byte(doc), &l); err != nil {
		l = model.Listing{}
		l.CreatedAt, _ = time.Parse(timeLayout, created)
	}
	l.ID = id
	l.OwnerID = owner
	return l, nil
}

func scanPost(row scannable) (model.Post, error) {
	var id, category, ts, doc string
	if err := row.Scan(&id, &category, &ts, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, err
		}
		return model.Post{}, fmt.Errorf("scan post: %w", err)
	}

	var p model.Post
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		p = model.Post{Category: model.PostCategory(category)}
		p.Timestamp, _ = time.Parse(timeLayout, ts)
	}
	p.ID = id
	return p, nil
}
