package scans

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Scan is one decoded QR/barcode result owned by a user. Content is the
// decoded text exactly as the camera library produced it; Format is the
// symbology name it reported (e.g. "qr_code", "ean_13"). Scanning the same
// content twice is routine and allowed.
type Scan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Format    string    `json:"format"`
	ScannedAt time.Time `json:"scanned_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound is returned when no scan matches, including scans that exist
// but belong to another user. Callers cannot distinguish the two, which is
// the point of owner scoping.
var ErrNotFound = errors.New("scan not found")

// DefaultListLimit bounds ListByUser when the caller does not specify one.
const DefaultListLimit = 50

// MaxListLimit caps ListByUser regardless of what the caller asks for.
const MaxListLimit = 200

// Repo defines scan persistence. Every operation is scoped to the owning
// user; the repository, not the handler, is responsible for never exposing
// another user's rows.
type Repo interface {
	// Create stores a new scan and returns the stored row.
	Create(ctx context.Context, scan *Scan) (*Scan, error)

	// ListByUser returns the user's scans, newest first, at most limit rows.
	ListByUser(ctx context.Context, userID string, limit int) ([]*Scan, error)

	// GetByID returns the scan only when it belongs to userID.
	GetByID(ctx context.Context, userID, scanID string) (*Scan, error)

	// Delete removes the scan only when it belongs to userID.
	Delete(ctx context.Context, userID, scanID string) error
}

// ClampLimit normalizes a caller-supplied list limit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
