package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "session:"
	defaultTTL = 24 * time.Hour
)

// RedisStore keeps session state as a JSON blob per session ID, expiring
// after a TTL that is refreshed on every read and write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing Redis client. A non-positive ttl falls
// back to 24 hours.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Load implements Store. An absent session yields a zero State.
func (s *RedisStore) Load(ctx context.Context, id string) (State, error) {
	val, err := s.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("session load: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return State{}, fmt.Errorf("session decode: %w", err)
	}

	// Best-effort TTL refresh; a failure here is not worth failing the turn.
	_ = s.client.Expire(ctx, keyPrefix+id, s.ttl).Err()
	return state, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, id string, state State) error {
	val, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, val, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// ClearHistory implements Store. The selected region survives a clear.
func (s *RedisStore) ClearHistory(ctx context.Context, id string) error {
	state, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	state.ConversationHistory = nil
	return s.Save(ctx, id, state)
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
