// Package embedding provides text vector embedding for semantic header
// comparison. Backends: a local Ollama server and a deterministic lexical
// fallback that keeps the engine functional offline.
package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// Embedder generates vector embeddings for short texts.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Name returns the backend name.
	Name() string
}

// Config selects and configures the embedding backend.
type Config struct {
	Provider       string `json:"provider"` // "ollama" or "lexical"
	OllamaEndpoint string `json:"ollama_endpoint"`
	OllamaModel    string `json:"ollama_model"`
}

// DefaultConfig returns the offline-safe default.
func DefaultConfig() Config {
	return Config{
		Provider:       "lexical",
		OllamaEndpoint: "http://localhost:11434",
		OllamaModel:    "embeddinggemma",
	}
}

// New creates an embedder from configuration.
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "", "lexical":
		return NewLexicalEmbedder(), nil
	case "ollama":
		return NewOllamaEmbedder(cfg.OllamaEndpoint, cfg.OllamaModel)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (use 'ollama' or 'lexical')", cfg.Provider)
	}
}

// Similarity maps the cosine of two vectors into [0, 1].
// Mismatched or empty vectors score 0.
func Similarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	sim := (cos + 1) / 2
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// Cache memoizes embeddings per session so repeated header comparisons do
// not re-embed the same text.
type Cache struct {
	embedder Embedder

	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewCache wraps an embedder with memoization.
func NewCache(e Embedder) *Cache {
	return &Cache{
		embedder: e,
		vectors:  make(map[string][]float32),
	}
}

// Embed returns the cached vector for text, embedding on first use.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.RLock()
	v, ok := c.vectors[text]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.vectors[text] = v
	c.mu.Unlock()
	return v, nil
}

// EmbedBatch embeds texts concurrently, reusing cached vectors.
// The texts are mutually independent so they fan out in parallel.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	var wg sync.WaitGroup
	sem := make(chan struct{}, 8)
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i], errs[i] = c.Embed(ctx, text)
		}(i, text)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Name returns the underlying backend name.
func (c *Cache) Name() string { return c.embedder.Name() }
