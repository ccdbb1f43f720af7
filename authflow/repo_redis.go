package authflow

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "authflow:"

var _ Repo = (*RedisRepo)(nil)

// RedisRepo stores flow state in redis with TTL expiry, so login attempts
// survive across service instances.
type RedisRepo struct {
	client *redis.Client
}

func NewRedisRepo(client *redis.Client) *RedisRepo {
	return &RedisRepo{client: client}
}

func (r *RedisRepo) Put(ctx context.Context, stateParam string, state *State) error {
	if stateParam == "" {
		return errors.New("state parameter cannot be empty")
	}
	if state == nil {
		return errors.New("state cannot be nil")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshal auth flow state")
	}
	if err := r.client.Set(ctx, keyPrefix+stateParam, payload, TTL).Err(); err != nil {
		return errors.Wrap(err, "store auth flow state")
	}
	return nil
}

func (r *RedisRepo) Take(ctx context.Context, stateParam string) (*State, error) {
	if stateParam == "" {
		return nil, errors.New("state parameter cannot be empty")
	}

	// GETDEL makes retrieve-and-consume atomic across instances.
	payload, err := r.client.GetDel(ctx, keyPrefix+stateParam).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load auth flow state")
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, errors.Wrap(err, "unmarshal auth flow state")
	}
	return &state, nil
}
