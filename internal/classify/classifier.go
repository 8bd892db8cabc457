// Package classify decides which canonical record type an uploaded table
// represents. Detection runs an ordered list of named strategies and picks
// the first confident result; it never fails, returning the unknown type
// with zero confidence when nothing matches.
package classify

import (
	"context"
	"log/slog"
	"strings"

	"cable-quote/internal/embedding"
	"cable-quote/internal/schema"
	"cable-quote/pkg/api"
	"cable-quote/pkg/confidence"
	qerrors "cable-quote/pkg/errors"
	"cable-quote/pkg/util"
)

// Input carries everything a strategy may inspect.
type Input struct {
	Headers  []string
	Rows     [][]string
	Filename string
	Intent   string // free-text user hint, e.g. "these are test prices"
}

// Classifier resolves the record type of an upload.
type Classifier struct {
	registry   *schema.Registry
	embeddings *embedding.Cache
	logger     *slog.Logger
	strategies []strategy
}

// strategy is one named detection rule. ok=false means "no opinion",
// letting the next strategy run.
type strategy struct {
	name string
	run  func(ctx context.Context, in Input) (api.Classification, bool)
}

// New creates a classifier over the schema registry. The embedding cache
// may be shared with the column mapper.
func New(registry *schema.Registry, cache *embedding.Cache, logger *slog.Logger) *Classifier {
	c := &Classifier{
		registry:   registry,
		embeddings: cache,
		logger:     logger,
	}
	// Most direct signal first; lexical fallback always last.
	c.strategies = []strategy{
		{name: "user-intent", run: c.byIntent},
		{name: "filename", run: c.byFilename},
		{name: "embedding", run: c.bySimilarity},
		{name: "keyword-fallback", run: c.byHeaderKeywords},
	}
	return c
}

// Classify runs the strategy chain. Deterministic for identical input.
func (c *Classifier) Classify(ctx context.Context, in Input) api.Classification {
	for _, s := range c.strategies {
		if result, ok := s.run(ctx, in); ok {
			result.Method = s.name
			c.logger.Debug("dataset classified",
				"record_type", result.RecordType,
				"confidence", result.Confidence,
				"method", s.name)
			return result
		}
	}
	return api.Classification{RecordType: api.RecordTypeUnknown, Confidence: 0, Method: "none"}
}

// byIntent matches the caller-supplied description of the data. It takes
// precedence over the filename since it is the most direct signal.
func (c *Classifier) byIntent(_ context.Context, in Input) (api.Classification, bool) {
	if strings.TrimSpace(in.Intent) == "" {
		return api.Classification{}, false
	}
	text := strings.ToLower(in.Intent)
	for _, group := range schema.ClassifierKeywords() {
		for _, kw := range group.Keywords {
			if strings.Contains(text, kw) {
				return api.Classification{
					RecordType: group.RecordType,
					Confidence: confidence.IntentConfidence,
				}, true
			}
		}
	}
	return api.Classification{}, false
}

// byFilename matches known type keywords in the filename.
func (c *Classifier) byFilename(_ context.Context, in Input) (api.Classification, bool) {
	if strings.TrimSpace(in.Filename) == "" {
		return api.Classification{}, false
	}
	name := strings.ToLower(in.Filename)
	for i, group := range schema.ClassifierKeywords() {
		for _, kw := range group.Keywords {
			if strings.Contains(name, kw) {
				conf := confidence.FilenameConfidence
				if i == 0 {
					// The testing keywords are the most specific.
					conf = 0.95
				}
				return api.Classification{
					RecordType: group.RecordType,
					Confidence: conf,
				}, true
			}
		}
	}
	return api.Classification{}, false
}

// bySimilarity embeds each header and each candidate type's field
// descriptions, scoring a type by the average best-field similarity of its
// headers. Embedder failure is logged and defers to the keyword fallback.
func (c *Classifier) bySimilarity(ctx context.Context, in Input) (api.Classification, bool) {
	if len(in.Headers) == 0 {
		return api.Classification{}, false
	}

	headerVecs, err := c.embeddings.EmbedBatch(ctx, in.Headers)
	if err != nil {
		c.logger.Warn("embedding unavailable, degrading to keyword fallback", "error", qerrors.NewEmbedderUnavailableError(err))
		return api.Classification{}, false
	}

	bestType := api.RecordTypeUnknown
	bestScore := 0.0
	for _, rt := range c.registry.RecordTypes() {
		score, err := c.typeScore(ctx, rt, headerVecs)
		if err != nil {
			c.logger.Warn("embedding unavailable, degrading to keyword fallback", "error", qerrors.NewEmbedderUnavailableError(err))
			return api.Classification{}, false
		}
		if score > bestScore {
			bestType, bestScore = rt, score
		}
	}

	if bestType == api.RecordTypeUnknown || !confidence.AboveThreshold(bestScore, confidence.SimilarityThreshold) {
		return api.Classification{}, false
	}

	// Refine the generic supertype by inspecting row content.
	if bestType == api.RecordTypeCatalogue {
		bestType = refineCatalogue(in)
	}

	return api.Classification{
		RecordType: bestType,
		Confidence: confidence.Clamp(bestScore),
	}, true
}

func (c *Classifier) typeScore(ctx context.Context, rt api.RecordType, headerVecs [][]float32) (float64, error) {
	fields := c.registry.Fields(rt)
	fieldTexts := make([]string, len(fields))
	for i, f := range fields {
		fieldTexts[i] = f.Name + ": " + f.Description
	}
	fieldVecs, err := c.embeddings.EmbedBatch(ctx, fieldTexts)
	if err != nil {
		return 0, err
	}

	var sum float64
	for _, hv := range headerVecs {
		best := 0.0
		for _, fv := range fieldVecs {
			if sim := embedding.Similarity(hv, fv); sim > best {
				best = sim
			}
		}
		sum += best
	}
	return sum / float64(len(headerVecs)), nil
}

// refineCatalogue narrows the generic catalogue supertype into a concrete
// subtype: test keywords in a representative cell mean a testing schedule,
// a voltage-range numeric column means a cable price schedule.
func refineCatalogue(in Input) api.RecordType {
	if len(in.Rows) > 0 {
		sample := strings.ToLower(strings.Join(in.Rows[0], " "))
		if strings.Contains(sample, "test") || strings.Contains(sample, "inspection") {
			return api.RecordTypeTesting
		}
	}
	for _, row := range in.Rows {
		for _, cell := range row {
			if v, ok := util.ParseNumericCell(cell); ok && v >= 0.4 && v <= 66 {
				// Plausible kV rating column.
				return api.RecordTypePricing
			}
		}
		break
	}
	return api.RecordTypePricing
}

// byHeaderKeywords is the lexical last resort over the joined header text.
func (c *Classifier) byHeaderKeywords(_ context.Context, in Input) (api.Classification, bool) {
	if len(in.Headers) == 0 {
		return api.Classification{}, false
	}
	joined := strings.ToLower(strings.Join(in.Headers, " "))

	groupConfidence := []float64{0.8, 0.7, confidence.KeywordConfidence}
	for i, group := range schema.ClassifierKeywords() {
		for _, kw := range group.Keywords {
			if strings.Contains(joined, kw) {
				return api.Classification{
					RecordType: group.RecordType,
					Confidence: groupConfidence[i],
				}, true
			}
		}
	}
	return api.Classification{}, false
}
