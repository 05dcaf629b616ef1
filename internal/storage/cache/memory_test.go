package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metacatalog/catalog/config"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemory(4)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "a", []byte(`{"x":"1"}`)))
	require.NoError(t, s.Set(ctx, "b", []byte(`{}`)))

	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"x":"1"}`, string(v))

	require.NoError(t, s.Delete(ctx, "a", "b", "never-set"))
	for _, k := range []string{"a", "b"} {
		_, ok, err = s.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemory(0)
	require.NoError(t, err)

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'z'

	out, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(out))
	out[1] = 'z'

	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_EvictionIsAMiss(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemory(1)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "first", []byte("1")))
	require.NoError(t, s.Set(ctx, "second", []byte("2")))

	_, ok, err := s.Get(ctx, "first")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)

	s, err := New(context.Background(), config.CacheConfig{Backend: "memory", MemorySize: 8})
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
}
