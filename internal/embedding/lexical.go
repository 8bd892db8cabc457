package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const lexicalDims = 256

// LexicalEmbedder is a deterministic fallback backend. It hashes token
// character trigrams into a fixed-size vector, so related header texts
// ("Test Name" vs "test_name") land close together without any model.
type LexicalEmbedder struct{}

// NewLexicalEmbedder creates the fallback embedder.
func NewLexicalEmbedder() *LexicalEmbedder {
	return &LexicalEmbedder{}
}

// Embed produces an L2-normalized trigram-hash vector. Never fails.
func (e *LexicalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, lexicalDims)

	for _, token := range tokenize(text) {
		// Whole-token signal plus trigram shingles
		bump(vec, token, 2.0)
		padded := " " + token + " "
		for i := 0; i+3 <= len(padded); i++ {
			bump(vec, padded[i:i+3], 1.0)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// EmbedBatch embeds every text.
func (e *LexicalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, _ := e.Embed(ctx, t)
		out[i] = v
	}
	return out, nil
}

// Name returns the backend name.
func (e *LexicalEmbedder) Name() string { return "lexical" }

func bump(vec []float32, s string, weight float32) {
	h := fnv.New32a()
	h.Write([]byte(s))
	vec[h.Sum32()%lexicalDims] += weight
}

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
