package persist

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "todolist:snapshot"

// RedisBackend keeps the snapshot under one Redis key.
type RedisBackend struct {
	client *redis.Client
	key    string
	owned  bool
}

// NewRedis wraps an existing client. The caller keeps ownership of client.
func NewRedis(client *redis.Client, key string) *RedisBackend {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBackend{client: client, key: key}
}

// OpenRedis connects using a redis:// URL or an "addr,password=...,ssl=true"
// connection string, and pings the server.
func OpenRedis(ctx context.Context, conn, key string) (*RedisBackend, error) {
	if strings.TrimSpace(conn) == "" {
		return nil, fmt.Errorf("redis url is empty")
	}
	client := redis.NewClient(redisOptions(conn))
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	b := NewRedis(client, key)
	b.owned = true
	return b, nil
}

func redisOptions(conn string) *redis.Options {
	if opts, err := redis.ParseURL(conn); err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(strings.TrimSpace(kv[1]), "true") {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

// Key returns the snapshot key.
func (r *RedisBackend) Key() string {
	return r.key
}

func (r *RedisBackend) SaveSnapshot(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisBackend) LoadSnapshot(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return data, nil
}

func (r *RedisBackend) Describe() string {
	return fmt.Sprintf("redis %s key %s", r.client.Options().Addr, r.key)
}

// Close closes the client if the backend opened it.
func (r *RedisBackend) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
