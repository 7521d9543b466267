package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/observability"
	"github.com/buran83/makechat/internal/security"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound covers both missing and TTL-expired sessions; callers
// cannot tell the two apart.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps opaque session values to user IDs. Expiry is enforced by
// the store itself (redis key TTL), so lookups of expired sessions behave
// exactly like lookups of sessions that never existed. The TTL is fixed at
// creation; access does not renew it.
type SessionStore interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	Resolve(ctx context.Context, value string) (uint, error)
	Delete(ctx context.Context, value string) error
}

type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewSessionStore(client redis.UniversalClient, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: "makechat:session", ttl: ttl}
}

func (s *RedisSessionStore) Create(ctx context.Context, user *domain.User) (string, error) {
	value := security.SessionValue(user.Username)
	err := s.client.Set(ctx, s.key(value), strconv.FormatUint(uint64(user.ID), 10), s.ttl).Err()
	if err != nil {
		observability.RecordSessionEvent(ctx, "create", "error")
		return "", err
	}
	observability.RecordSessionEvent(ctx, "create", "success")
	return value, nil
}

func (s *RedisSessionStore) Resolve(ctx context.Context, value string) (uint, error) {
	raw, err := s.client.Get(ctx, s.key(value)).Result()
	if err == redis.Nil {
		observability.RecordSessionEvent(ctx, "resolve", "not_found")
		return 0, ErrSessionNotFound
	}
	if err != nil {
		observability.RecordSessionEvent(ctx, "resolve", "error")
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		observability.RecordSessionEvent(ctx, "resolve", "error")
		return 0, ErrSessionNotFound
	}
	observability.RecordSessionEvent(ctx, "resolve", "success")
	return uint(id), nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, value string) error {
	if err := s.client.Del(ctx, s.key(value)).Err(); err != nil {
		observability.RecordSessionEvent(ctx, "delete", "error")
		return err
	}
	observability.RecordSessionEvent(ctx, "delete", "success")
	return nil
}

func (s *RedisSessionStore) key(value string) string {
	return s.prefix + ":" + value
}
