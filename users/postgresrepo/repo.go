// Package postgresrepo persists users in Postgres.
//
// Expected schema:
//
//	CREATE TABLE users (
//	    id          UUID PRIMARY KEY,
//	    external_id TEXT NOT NULL UNIQUE,
//	    email       TEXT NOT NULL,
//	    name        TEXT NOT NULL,
//	    avatar_url  TEXT NOT NULL DEFAULT '',
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
package postgresrepo

import (
	"context"
	"database/sql"

	"github.com/cdynak/qr-scanner-registry/users"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// dbtx is the subset of *sql.DB the repo needs, so transactions can be
// substituted.
type dbtx interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ users.Repo = (*Repo)(nil)

// Repo is the Postgres implementation of users.Repo.
type Repo struct {
	db dbtx
}

func New(db dbtx) *Repo {
	return &Repo{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}
	return db, nil
}

const userColumns = "id, external_id, email, name, avatar_url, created_at, updated_at"

func scanUser(row *sql.Row) (*users.User, error) {
	var u users.User
	err := row.Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan user")
	}
	return &u, nil
}

func (r *Repo) FindByExternalID(ctx context.Context, externalID string) (*users.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID)
	return scanUser(row)
}

func (r *Repo) Insert(ctx context.Context, user *users.User) (*users.User, error) {
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, external_id, email, name, avatar_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		id, user.ExternalID, user.Email, user.Name, user.AvatarURL)
	return scanUser(row)
}

func (r *Repo) Update(ctx context.Context, externalID string, fields users.ProfileFields) (*users.User, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET email = $2, name = $3, avatar_url = $4, updated_at = now()
		 WHERE external_id = $1
		 RETURNING `+userColumns,
		externalID, fields.Email, fields.Name, fields.AvatarURL)
	return scanUser(row)
}
