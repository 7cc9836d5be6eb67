/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package kvstore

import (
	"context"
	"sync"
)

// InMemStore is an in-memory Store implementation backed by sync.Map.
// Synchronization is per-entry, so concurrent operations on different keys never block each other.
// The zero value is not usable, use NewInMemStore.
type InMemStore struct {
	entries *sync.Map
}

var _ Store = (*InMemStore)(nil)

// NewInMemStore creates a new InMemStore.
func NewInMemStore() *InMemStore {
	return &InMemStore{entries: &sync.Map{}}
}

// Get returns the value stored under the key.
// Implements Store interface.
func (s *InMemStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	v, ok := s.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	return copyBytes(v.([]byte)), true, nil
}

// Set stores the value under the key, overwriting any previous value.
// Implements Store interface.
func (s *InMemStore) Set(_ context.Context, key Key, value []byte) error {
	s.entries.Store(key, copyBytes(value))
	return nil
}

// Delete removes the value stored under the key.
// Implements Store interface.
func (s *InMemStore) Delete(_ context.Context, key Key) error {
	s.entries.Delete(key)
	return nil
}

// copyBytes isolates stored values from caller-side mutation of the passed/returned slices.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
