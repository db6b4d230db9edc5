package badger

import (
	"bytes"
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sectionrank/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *EmbeddingCache {
	t.Helper()
	cache, err := NewMemoryEmbeddingCache()
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache.(*EmbeddingCache)
}

func TestEmbeddingCache_RoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	texts := []string{"alpha", "beta"}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	require.NoError(t, cache.PutEmbeddings(ctx, "model-a", texts, vectors))

	got, err := cache.GetEmbeddings(ctx, "model-a", []string{"beta", "gamma", "alpha"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []float32{0.3, 0.4}, got[0])
	assert.Nil(t, got[1], "uncached text is a miss")
	assert.Equal(t, []float32{0.1, 0.2}, got[2])
}

func TestEmbeddingCache_ModelsAreSeparate(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.PutEmbeddings(ctx, "model-a", []string{"alpha"}, [][]float32{{1}}))

	got, err := cache.GetEmbeddings(ctx, "model-b", []string{"alpha"})
	require.NoError(t, err)
	assert.Nil(t, got[0])

	n, err := cache.Count("model-a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = cache.Count("model-b")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEmbeddingCache_SkipsEmptyVectors(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.PutEmbeddings(ctx, "m", []string{"a", "b"}, [][]float32{nil, {1, 2}}))

	n, err := cache.Count("m")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEmbeddingCache_LengthMismatch(t *testing.T) {
	cache := newTestCache(t)
	err := cache.PutEmbeddings(context.Background(), "m", []string{"a"}, nil)
	assert.ErrorIs(t, err, storage.ErrLengthMismatch)
}

func TestEmbeddingCache_CorruptEntryIsMiss(t *testing.T) {
	cache := newTestCache(t)
	key := makeEmbeddingKey("m", "alpha")

	err := cache.backend.WithTx(func(tx *badger.Txn) error {
		return tx.Set(key, []byte{0x05, 0x01})
	}, true)
	require.NoError(t, err)

	got, err := cache.GetEmbeddings(context.Background(), "m", []string{"alpha"})
	require.NoError(t, err)
	assert.Nil(t, got[0])
}

func TestEmbeddingCache_Closed(t *testing.T) {
	cache, err := NewMemoryEmbeddingCache()
	require.NoError(t, err)
	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close(), "closing twice is harmless")

	_, err = cache.GetEmbeddings(context.Background(), "m", []string{"a"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	err = cache.PutEmbeddings(context.Background(), "m", []string{"a"}, [][]float32{{1}})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestNewEmbeddingCache_RequiresBackend(t *testing.T) {
	_, err := NewEmbeddingCache(nil)
	assert.ErrorIs(t, err, storage.ErrBackendRequired)
}

func TestMakeEmbeddingKey(t *testing.T) {
	k1 := makeEmbeddingKey("m", "text")
	k2 := makeEmbeddingKey("m", "text")
	k3 := makeEmbeddingKey("m", "other")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Equal(t, makeModelPrefix("m"), k1[:len(makeModelPrefix("m"))])
	assert.Len(t, k1, len(makeModelPrefix("m"))+32, "256-bit text hash")
}

func TestMakeModelPrefix_DoesNotOverlap(t *testing.T) {
	models := []string{"m", "m:", "m:x", "mx", "bge:small", "bge"}
	for _, a := range models {
		for _, b := range models {
			if a == b {
				continue
			}
			key := makeEmbeddingKey(b, "text")
			assert.False(t, bytes.HasPrefix(key, makeModelPrefix(a)), "%q key under %q prefix", b, a)
		}
	}
}

func TestEmbeddingCache_ModelsSharingAPrefixCountSeparately(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.PutEmbeddings(ctx, "bge", []string{"alpha"}, [][]float32{{1}}))
	require.NoError(t, cache.PutEmbeddings(ctx, "bge:small", []string{"alpha", "beta"}, [][]float32{{2}, {3}}))

	n, err := cache.Count("bge")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = cache.Count("bge:small")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := cache.GetEmbeddings(ctx, "bge", []string{"alpha"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, got[0])
}
