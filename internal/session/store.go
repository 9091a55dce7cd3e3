package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guntanalaganesh-web/shoe-store/internal/redisx"
)

var ErrNotFound = errors.New("session not found")

// Session is a browser session. UserID is empty until login binds one; the
// cart lives in Redis under the same session ID with its own key.
type Session struct {
	ID     string
	UserID string
}

func (s *Session) Authenticated() bool {
	return s.UserID != ""
}

type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	userID, err := s.rdb.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &Session{ID: id, UserID: userID}, nil
}

// Put writes the session and refreshes its retention TTL.
func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	if err := s.rdb.Set(ctx, s.key(sess.ID), sess.UserID, s.ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf(redisx.KeySession, id)
}
