package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// RedisStore keeps sessions in redis so several API processes can share them.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// RedisOptions configures the redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions, ttl time.Duration, logger *slog.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	if logger != nil {
		logger.Info("Session store opened", "backend", "redis", "addr", opts.Addr, "ttl", ttl)
	}

	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// Create stores a new session for user. Redis expires the key after the TTL.
func (r *RedisStore) Create(ctx context.Context, user domain.SessionUser) (*Session, error) {
	s := newSession(user, r.ttl)
	data, err := encode(s)
	if err != nil {
		return nil, err
	}

	if err := r.rdb.Set(ctx, string(key(s.ID)), data, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Get returns the session with id, or ErrNotFound once it has expired.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.rdb.Get(ctx, string(key(id))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decode(data)
}

// Delete removes a session. Deleting an unknown id is not an error.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, string(key(id))).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
