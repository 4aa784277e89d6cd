// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package keycache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps entries in Redis so a key cache can be shared
// between machines, for example a CI fleet running the same parameter
// sets.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// TTL of cached entries; zero means no expiry.
	TTL time.Duration
}

// NewRedisStorage connects and pings the server.
func NewRedisStorage(cfg RedisConfig) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStorage{
		client: client,
		prefix: "tfhe:keycache:",
		ttl:    cfg.TTL,
	}, nil
}

func (s *RedisStorage) Load(ctx context.Context, handle string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+handle).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("keycache: redis get: %w", err)
	}
	return data, nil
}

func (s *RedisStorage) Store(ctx context.Context, handle string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+handle, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("keycache: redis set: %w", err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, handle string) error {
	if err := s.client.Del(ctx, s.prefix+handle).Err(); err != nil {
		return fmt.Errorf("keycache: redis del: %w", err)
	}
	return nil
}

// Close releases the connection.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
