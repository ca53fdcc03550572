package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists session blobs in Redis, one namespaced key per
// player. The TTL bounds how long an abandoned half-played session lingers;
// every Save refreshes it.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, nic string) ([]byte, bool, error) {
	blob, err := s.client.Get(ctx, s.key(nic)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

func (s *SessionStore) Save(ctx context.Context, nic string, blob []byte) error {
	return s.client.Set(ctx, s.key(nic), blob, s.ttl).Err()
}

func (s *SessionStore) Clear(ctx context.Context, nic string) error {
	return s.client.Del(ctx, s.key(nic)).Err()
}

func (s *SessionStore) key(nic string) string {
	return "fintrex:session:" + nic
}
