package authflow

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory Repo for tests and single-node
// runs without redis.
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]*State
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{states: make(map[string]*State)}
}

func (r *InMemoryRepo) Put(ctx context.Context, stateParam string, state *State) error {
	if stateParam == "" {
		return errors.New("state parameter cannot be empty")
	}
	if state == nil {
		return errors.New("state cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *state
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	r.states[stateParam] = &copied
	return nil
}

func (r *InMemoryRepo) Take(ctx context.Context, stateParam string) (*State, error) {
	if stateParam == "" {
		return nil, errors.New("state parameter cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[stateParam]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.states, stateParam)

	if time.Since(state.CreatedAt) > TTL {
		return nil, ErrNotFound
	}

	copied := *state
	return &copied, nil
}
