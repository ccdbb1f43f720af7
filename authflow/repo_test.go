package authflow

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() *State {
	return &State{
		CodeVerifier: "verifier-1",
		Nonce:        "nonce-1",
		ReturnURL:    "/scans",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestInMemoryRepo_TakeConsumesState(t *testing.T) {
	repo := NewInMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "state-1", testState()))

	state, err := repo.Take(ctx, "state-1")
	require.NoError(t, err)
	assert.Equal(t, "verifier-1", state.CodeVerifier)
	assert.Equal(t, "nonce-1", state.Nonce)
	assert.Equal(t, "/scans", state.ReturnURL)

	// A state parameter is single-use.
	_, err = repo.Take(ctx, "state-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryRepo_ExpiredStateIsGone(t *testing.T) {
	repo := NewInMemoryRepo()
	ctx := context.Background()

	stale := testState()
	stale.CreatedAt = time.Now().UTC().Add(-TTL - time.Minute)
	require.NoError(t, repo.Put(ctx, "state-1", stale))

	_, err := repo.Take(ctx, "state-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryRepo_RejectsEmptyInputs(t *testing.T) {
	repo := NewInMemoryRepo()
	ctx := context.Background()

	assert.Error(t, repo.Put(ctx, "", testState()))
	assert.Error(t, repo.Put(ctx, "state-1", nil))
	_, err := repo.Take(ctx, "")
	assert.Error(t, err)
}

func newRedisRepo(t *testing.T) (*RedisRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepo(client), mr
}

func TestRedisRepo_RoundTrip(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "state-1", testState()))

	state, err := repo.Take(ctx, "state-1")
	require.NoError(t, err)
	assert.Equal(t, "verifier-1", state.CodeVerifier)
	assert.Equal(t, "/scans", state.ReturnURL)

	_, err = repo.Take(ctx, "state-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRepo_StateExpires(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "state-1", testState()))
	mr.FastForward(TTL + time.Second)

	_, err := repo.Take(ctx, "state-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRepo_UnknownState(t *testing.T) {
	repo, _ := newRedisRepo(t)

	_, err := repo.Take(context.Background(), "never-stored")
	assert.ErrorIs(t, err, ErrNotFound)
}
