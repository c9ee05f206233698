package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetHas(t *testing.T) {
	m := NewMemoryStore(10)
	ctx := context.Background()

	ok, err := m.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Put(ctx, "k", raw(`{"a":1}`)))
	ok, err = m.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, raw(`{"a":1}`), got)

	assert.ErrorIs(t, m.Put(ctx, "", nil), ErrEmptyKey)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	m := NewMemoryStore(10)
	ctx := context.Background()

	values := raw(`"abc"`)
	require.NoError(t, m.Put(ctx, "k", values))
	values[0][1] = 'X'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(got[0]))

	got[0][1] = 'Y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(again[0]))
}

func TestMemoryStore_EmptyList(t *testing.T) {
	m := NewMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", nil))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryStore_Eviction(t *testing.T) {
	m := NewMemoryStore(2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Put(ctx, fmt.Sprintf("k%d", i), raw(`1`)))
	}
	assert.Equal(t, 2, m.Len())

	ok, err := m.Has(ctx, "k0")
	require.NoError(t, err)
	assert.False(t, ok, "oldest entry is evicted")
}

func TestMemoryStore_DeleteClearStats(t *testing.T) {
	m := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "a", raw(`1`, `2`)))
	require.NoError(t, m.Put(ctx, "b", raw(`33`)))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Backend: "memory", Entries: 2, SizeBytes: 4}, stats)

	require.NoError(t, m.Delete(ctx, "a"))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Clear(ctx))
	assert.Equal(t, 0, m.Len())
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	m := NewMemoryStore(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Put(ctx, "k", nil), context.Canceled)
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
