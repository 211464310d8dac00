// Package redis persists the tracker state in Redis, one string key per
// blob under a configurable prefix.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tracker/internal/storage"
	"tracker/internal/store"
)

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type Repository struct {
	client *goredis.Client
	prefix string
}

// New connects and pings the server.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	slog.InfoContext(ctx, "Connected to Redis", "addr", cfg.Addr, "db", cfg.DB)
	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, prefix string) *Repository {
	return &Repository{client: client, prefix: prefix}
}

func (r *Repository) key(name string) string {
	return r.prefix + name
}

func (r *Repository) Load(ctx context.Context) (store.Snapshot, error) {
	keys := make([]string, len(storage.Keys))
	for i, k := range storage.Keys {
		keys[i] = r.key(k)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return store.Snapshot{}, fmt.Errorf("load state: %w", err)
	}

	blobs := make(map[string]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			blobs[storage.Keys[i]] = s
		}
	}
	return storage.DecodeSnapshot(blobs)
}

// Save writes every key in a single MULTI/EXEC.
func (r *Repository) Save(ctx context.Context, snap store.Snapshot) error {
	blobs, err := storage.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, k := range storage.Keys {
			pipe.Set(ctx, r.key(k), blobs[k], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.client.Close()
}
