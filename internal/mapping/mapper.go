// Package mapping aligns uploaded column headers to canonical field names
// using cached embeddings with lexical overrides.
package mapping

import (
	"context"
	"log/slog"
	"strings"

	"cable-quote/internal/embedding"
	"cable-quote/internal/schema"
	"cable-quote/pkg/api"
	"cable-quote/pkg/confidence"
	qerrors "cable-quote/pkg/errors"
)

// Mapper reconciles uploaded headers against a record type's schema.
type Mapper struct {
	registry   *schema.Registry
	embeddings *embedding.Cache
	logger     *slog.Logger
}

// New creates a column mapper sharing the session embedding cache.
func New(registry *schema.Registry, cache *embedding.Cache, logger *slog.Logger) *Mapper {
	return &Mapper{registry: registry, embeddings: cache, logger: logger}
}

// MapColumns maps every canonical field of recordType to its best uploaded
// header. Fields below the acceptance threshold stay unmapped; that is
// reported, not an error, since downstream matching simply skips them.
func (m *Mapper) MapColumns(ctx context.Context, headers []string, recordType api.RecordType) api.MappingResult {
	result := api.MappingResult{
		Mapping:    make(map[string]string),
		Confidence: make(map[string]float64),
	}

	fields := m.registry.Fields(recordType)
	if len(fields) == 0 || len(headers) == 0 {
		result.UnmappedUploaded = append(result.UnmappedUploaded, headers...)
		return result
	}

	headerVecs, embedErr := m.embeddings.EmbedBatch(ctx, headers)
	if embedErr != nil {
		qerr := qerrors.NewEmbedderUnavailableError(embedErr)
		m.logger.Warn("header embedding failed, using lexical overrides only", "error", qerr)
		result.Warnings = append(result.Warnings, qerr)
	}

	used := make(map[string]bool)
	var accepted []float64

	for _, field := range fields {
		fieldVec := []float32(nil)
		if embedErr == nil {
			fieldVec, _ = m.embeddings.Embed(ctx, field.Name+": "+field.Description)
		}

		bestHeader := ""
		bestScore := 0.0
		for i, header := range headers {
			score := 0.0
			if fieldVec != nil && headerVecs != nil {
				score = embedding.Similarity(fieldVec, headerVecs[i])
			}

			// Lexical overrides: an exact case/underscore-insensitive match
			// is authoritative; a substring relationship floors the score.
			switch {
			case normalize(header) == normalize(field.Name):
				score = 1.0
			case isSubstring(header, field.Name):
				if score < confidence.SubstringFloor {
					score = confidence.SubstringFloor
				}
			}

			if score > bestScore {
				bestHeader, bestScore = header, score
			}
		}

		if bestScore > confidence.MappingThreshold {
			result.Mapping[field.Name] = bestHeader
			result.Confidence[field.Name] = confidence.Clamp(bestScore)
			used[bestHeader] = true
			accepted = append(accepted, bestScore)
		} else {
			result.UnmappedCanonical = append(result.UnmappedCanonical, field.Name)
			result.Warnings = append(result.Warnings, qerrors.NewUnmappedFieldError(field.Name, string(recordType)))
		}
	}

	for _, header := range headers {
		if !used[header] {
			result.UnmappedUploaded = append(result.UnmappedUploaded, header)
		}
	}
	result.AverageConfidence = confidence.Average(accepted)
	return result
}

// normalize lowercases and strips separators so "Test_Name", "test name"
// and "TestName" compare equal.
func normalize(s string) string {
	s = strings.ToLower(s)
	for _, sep := range []string{"_", "-", " ", "."} {
		s = strings.ReplaceAll(s, sep, "")
	}
	return s
}

func isSubstring(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
