package embedding

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalEmbedDeterministic(t *testing.T) {
	e := NewLexicalEmbedder()

	a, err := e.Embed(context.Background(), "Unit Price")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "Unit Price")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLexicalEmbedNormalized(t *testing.T) {
	e := NewLexicalEmbedder()

	v, err := e.Embed(context.Background(), "voltage rating")
	require.NoError(t, err)

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestSimilarityIdenticalText(t *testing.T) {
	e := NewLexicalEmbedder()

	a, _ := e.Embed(context.Background(), "unit price")
	b, _ := e.Embed(context.Background(), "unit price")
	assert.InDelta(t, 1.0, Similarity(a, b), 1e-6)
}

func TestSimilarityRelatedBeatsUnrelated(t *testing.T) {
	e := NewLexicalEmbedder()
	ctx := context.Background()

	base, _ := e.Embed(ctx, "unit price")
	related, _ := e.Embed(ctx, "price per unit")
	unrelated, _ := e.Embed(ctx, "delivery schedule")

	assert.Greater(t, Similarity(base, related), Similarity(base, unrelated))
}

func TestSimilaritySeparatorInsensitive(t *testing.T) {
	e := NewLexicalEmbedder()
	ctx := context.Background()

	a, _ := e.Embed(ctx, "Test Name")
	b, _ := e.Embed(ctx, "test_name")
	assert.InDelta(t, 1.0, Similarity(a, b), 1e-6)
}

func TestSimilarityEdgeCases(t *testing.T) {
	assert.Zero(t, Similarity(nil, nil))
	assert.Zero(t, Similarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Zero(t, Similarity([]float32{0, 0}, []float32{1, 0}))
}

// countingEmbedder records how many backend calls got through the cache.
type countingEmbedder struct {
	inner Embedder
	calls atomic.Int64
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := c.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *countingEmbedder) Name() string { return "counting" }

func TestCacheMemoizes(t *testing.T) {
	counting := &countingEmbedder{inner: NewLexicalEmbedder()}
	cache := NewCache(counting)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := cache.Embed(ctx, "unit price")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), counting.calls.Load())
}

func TestCacheEmbedBatchOrder(t *testing.T) {
	e := NewLexicalEmbedder()
	cache := NewCache(e)
	ctx := context.Background()

	texts := []string{"sku", "name", "unit price", "voltage", "sku"}
	vecs, err := cache.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))

	for i, text := range texts {
		direct, _ := e.Embed(ctx, text)
		assert.Equal(t, direct, vecs[i], "index %d", i)
	}
}

type errorEmbedder struct{}

func (errorEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("backend down")
}
func (errorEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("backend down")
}
func (errorEmbedder) Name() string { return "error" }

func TestCacheEmbedBatchPropagatesError(t *testing.T) {
	cache := NewCache(errorEmbedder{})
	_, err := cache.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestNewProviderSelection(t *testing.T) {
	e, err := New(Config{Provider: "lexical"})
	require.NoError(t, err)
	assert.Equal(t, "lexical", e.Name())

	e, err = New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "lexical", e.Name())

	_, err = New(Config{Provider: "quantum"})
	assert.Error(t, err)
}
