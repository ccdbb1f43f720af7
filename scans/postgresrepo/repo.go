// Package postgresrepo persists scans in Postgres.
//
// Expected schema:
//
//	CREATE TABLE scans (
//	    id         UUID PRIMARY KEY,
//	    user_id    UUID NOT NULL REFERENCES users (id),
//	    content    TEXT NOT NULL,
//	    format     TEXT NOT NULL,
//	    scanned_at TIMESTAMPTZ NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX scans_user_recent ON scans (user_id, scanned_at DESC);
package postgresrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/cdynak/qr-scanner-registry/scans"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

type dbtx interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var _ scans.Repo = (*Repo)(nil)

// Repo is the Postgres implementation of scans.Repo. Every query is keyed
// by user_id; owner scoping lives here, not in the handlers.
type Repo struct {
	db dbtx
}

func New(db dbtx) *Repo {
	return &Repo{db: db}
}

const scanColumns = "id, user_id, content, format, scanned_at, created_at"

func scanRow(row *sql.Row) (*scans.Scan, error) {
	var s scans.Scan
	err := row.Scan(&s.ID, &s.UserID, &s.Content, &s.Format, &s.ScannedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scans.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan row")
	}
	return &s, nil
}

func (r *Repo) Create(ctx context.Context, scan *scans.Scan) (*scans.Scan, error) {
	id := scan.ID
	if id == "" {
		id = uuid.NewString()
	}
	scannedAt := scan.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO scans (id, user_id, content, format, scanned_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+scanColumns,
		id, scan.UserID, scan.Content, scan.Format, scannedAt)
	return scanRow(row)
}

func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]*scans.Scan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+scanColumns+`
		 FROM scans
		 WHERE user_id = $1
		 ORDER BY scanned_at DESC
		 LIMIT $2`,
		userID, scans.ClampLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "list scans")
	}
	defer rows.Close()

	result := make([]*scans.Scan, 0)
	for rows.Next() {
		var s scans.Scan
		if err := rows.Scan(&s.ID, &s.UserID, &s.Content, &s.Format, &s.ScannedAt, &s.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		result = append(result, &s)
	}
	return result, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, userID, scanID string) (*scans.Scan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+scanColumns+` FROM scans WHERE id = $1 AND user_id = $2`,
		scanID, userID)
	return scanRow(row)
}

func (r *Repo) Delete(ctx context.Context, userID, scanID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM scans WHERE id = $1 AND user_id = $2`, scanID, userID)
	if err != nil {
		return errors.Wrap(err, "delete scan")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete scan")
	}
	if affected == 0 {
		return scans.ErrNotFound
	}
	return nil
}
