package repofake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cdynak/qr-scanner-registry/scans"
	"github.com/google/uuid"
)

var _ scans.Repo = (*FakeScanRepo)(nil)

// FakeScanRepo is a thread-safe in-memory scans.Repo for tests and local
// runs.
type FakeScanRepo struct {
	lock sync.RWMutex
	rows map[string]*scans.Scan // keyed by scan ID
}

func NewFakeScanRepo() *FakeScanRepo {
	return &FakeScanRepo{rows: make(map[string]*scans.Scan)}
}

func (r *FakeScanRepo) Create(ctx context.Context, scan *scans.Scan) (*scans.Scan, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored := *scan
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = time.Now().UTC()
	if stored.ScannedAt.IsZero() {
		stored.ScannedAt = stored.CreatedAt
	}
	r.rows[stored.ID] = &stored

	copied := stored
	return &copied, nil
}

func (r *FakeScanRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*scans.Scan, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	limit = scans.ClampLimit(limit)
	owned := make([]*scans.Scan, 0)
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		copied := *row
		owned = append(owned, &copied)
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].ScannedAt.After(owned[j].ScannedAt)
	})
	if len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

func (r *FakeScanRepo) GetByID(ctx context.Context, userID, scanID string) (*scans.Scan, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	row, ok := r.rows[scanID]
	if !ok || row.UserID != userID {
		return nil, scans.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *FakeScanRepo) Delete(ctx context.Context, userID, scanID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	row, ok := r.rows[scanID]
	if !ok || row.UserID != userID {
		return scans.ErrNotFound
	}
	delete(r.rows, scanID)
	return nil
}
