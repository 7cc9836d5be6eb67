/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package redisstore provides a Redis-backed implementation of kvstore.Store,
// allowing throttling state to be shared between processes.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/acronis/go-throttle/kvstore"
)

// Key namespace prefixes in Redis.
const (
	currentDelayKeyPrefix = "throttle:"
	limitsTableKeyPrefix  = "throttle_limits:"
)

// Store is a kvstore.Store implementation on top of Redis.
// Per-key atomicity is provided by Redis itself, as each value is read and replaced by a single command.
type Store struct {
	client redis.UniversalClient
}

var _ kvstore.Store = (*Store)(nil)

// New creates a new Store using the provided Redis client.
// The client's lifecycle is owned by the caller.
func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Get returns the value stored under the key.
// Implements kvstore.Store interface.
func (s *Store) Get(ctx context.Context, key kvstore.Key) ([]byte, bool, error) {
	redisKey, err := formatRedisKey(key)
	if err != nil {
		return nil, false, err
	}
	value, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %q: %w", redisKey, err)
	}
	return value, true, nil
}

// Set stores the value under the key, overwriting any previous value.
// Implements kvstore.Store interface.
func (s *Store) Set(ctx context.Context, key kvstore.Key, value []byte) error {
	redisKey, err := formatRedisKey(key)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", redisKey, err)
	}
	return nil
}

// Delete removes the value stored under the key.
// Implements kvstore.Store interface.
func (s *Store) Delete(ctx context.Context, key kvstore.Key) error {
	redisKey, err := formatRedisKey(key)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", redisKey, err)
	}
	return nil
}

func formatRedisKey(key kvstore.Key) (string, error) {
	switch key.Facet {
	case kvstore.FacetCurrentDelay:
		return currentDelayKeyPrefix + key.Activity, nil
	case kvstore.FacetLimitsTable:
		return limitsTableKeyPrefix + key.Activity, nil
	}
	return "", fmt.Errorf("unsupported key facet %q", key.Facet)
}
