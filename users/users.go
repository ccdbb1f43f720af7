package users

import (
	"context"
	"time"

	"github.com/cdynak/qr-scanner-registry/session"
	"github.com/pkg/errors"
)

// User is the stored record for an authenticated principal. ExternalID is
// the provider-issued subject and is unique across all users; rows are
// created on first login and refreshed on every subsequent one, never
// deleted by this service.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Identity converts the stored row into the session-embedded form.
func (u *User) Identity() session.Identity {
	return session.Identity{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Email:      u.Email,
		Name:       u.Name,
		AvatarURL:  u.AvatarURL,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("user not found")

// ProfileFields are the provider-sourced attributes refreshed on login.
type ProfileFields struct {
	Email     string
	Name      string
	AvatarURL string
}

// Repo defines user persistence. Implementations enforce ExternalID
// uniqueness.
type Repo interface {
	// FindByExternalID returns the user owning the provider subject, or
	// ErrNotFound.
	FindByExternalID(ctx context.Context, externalID string) (*User, error)

	// Insert stores a new user and returns the stored row, timestamps and
	// ID filled in.
	Insert(ctx context.Context, user *User) (*User, error)

	// Update refreshes a user's profile fields by external ID and returns
	// the stored row.
	Update(ctx context.Context, externalID string, fields ProfileFields) (*User, error)
}
