package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/cdynak/qr-scanner-registry/users"
	"github.com/google/uuid"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is a thread-safe in-memory Repo for tests and local runs.
type FakeUserRepo struct {
	lock  sync.RWMutex
	users map[string]*users.User // keyed by external ID

	// InsertCalls counts Insert invocations so tests can assert the
	// upsert path inserts exactly once.
	InsertCalls int
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{users: make(map[string]*users.User)}
}

func (r *FakeUserRepo) FindByExternalID(ctx context.Context, externalID string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.users[externalID]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *FakeUserRepo) Insert(ctx context.Context, user *users.User) (*users.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.InsertCalls++

	now := time.Now().UTC()
	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.ExternalID] = &stored

	copied := stored
	return &copied, nil
}

func (r *FakeUserRepo) Update(ctx context.Context, externalID string, fields users.ProfileFields) (*users.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	user, ok := r.users[externalID]
	if !ok {
		return nil, users.ErrNotFound
	}
	user.Email = fields.Email
	user.Name = fields.Name
	user.AvatarURL = fields.AvatarURL
	user.UpdatedAt = time.Now().UTC()

	copied := *user
	return &copied, nil
}
