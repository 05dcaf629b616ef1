package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemorySize = 256

// MemoryStore is a per-process LRU. Eviction only ever produces a miss.
type MemoryStore struct {
	cache *lru.Cache[string, []byte]
}

func NewMemory(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = defaultMemorySize
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryStore{cache: c}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.cache.Add(key, v)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.cache.Remove(k)
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
