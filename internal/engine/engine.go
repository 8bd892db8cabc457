// Package engine wires the classifier, column mapper, override store,
// matcher, quotation engine, and modifier into the single surface the
// rendering/transport layer calls.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cable-quote/internal/classify"
	"cable-quote/internal/embedding"
	"cable-quote/internal/ingest"
	"cable-quote/internal/mapping"
	"cable-quote/internal/match"
	"cable-quote/internal/modify"
	"cable-quote/internal/quote"
	"cable-quote/internal/schema"
	"cable-quote/internal/store"
	"cable-quote/pkg/api"
	"cable-quote/pkg/confidence"
	qerrors "cable-quote/pkg/errors"
)

// Snapshotter persists accepted uploads and issued quotations for audit.
// Optional; a nil Snapshotter disables persistence.
type Snapshotter interface {
	SaveUploadSnapshot(ctx context.Context, ds api.UploadedDataset) error
	SaveQuotation(ctx context.Context, b api.QuotationBreakdown) error
}

// Engine is the adaptive schema reconciliation and spec-matching engine.
// All operations are synchronous and pure over their inputs plus the
// active override datasets.
type Engine struct {
	registry   *schema.Registry
	classifier *classify.Classifier
	mapper     *mapping.Mapper
	store      *store.Store
	matcher    *match.Matcher
	quoter     *quote.Engine
	modifier   *modify.Modifier
	snapshots  Snapshotter
	logger     *slog.Logger

	embedTimeout time.Duration
}

// Option configures the engine.
type Option func(*Engine)

// WithSnapshotter enables upload/quotation persistence.
func WithSnapshotter(s Snapshotter) Option {
	return func(e *Engine) { e.snapshots = s }
}

// WithEmbedTimeout bounds each embedding round trip.
func WithEmbedTimeout(d time.Duration) Option {
	return func(e *Engine) { e.embedTimeout = d }
}

// New creates an engine over the given embedder. The embedding cache is
// shared between the classifier and the mapper so a header embedded during
// classification is not re-embedded during mapping.
func New(embedder embedding.Embedder, logger *slog.Logger, opts ...Option) *Engine {
	registry := schema.NewRegistry()
	cache := embedding.NewCache(embedder)

	e := &Engine{
		registry:     registry,
		classifier:   classify.New(registry, cache, logger),
		mapper:       mapping.New(registry, cache, logger),
		store:        store.New(),
		matcher:      match.New(registry),
		quoter:       quote.NewEngine(),
		modifier:     modify.NewModifier(),
		logger:       logger,
		embedTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Upload classifies and reconciles a raw table, installing it as the
// session override for its record type. On any failure the override store
// is left untouched and the result explains what went wrong.
func (e *Engine) Upload(ctx context.Context, req api.UploadRequest) api.UploadResult {
	table, err := ingest.ParseTable(req.TableText)
	if err != nil {
		return api.UploadResult{Accepted: false, RecordType: api.RecordTypeUnknown, Error: err.Error()}
	}

	embedCtx, cancel := context.WithTimeout(ctx, e.embedTimeout)
	defer cancel()

	classification := e.classifier.Classify(embedCtx, classify.Input{
		Headers:  table.Headers,
		Rows:     table.Rows,
		Filename: req.Filename,
		Intent:   req.Intent,
	})
	if classification.RecordType == api.RecordTypeUnknown {
		return api.UploadResult{
			Accepted:        false,
			RecordType:      api.RecordTypeUnknown,
			DetectedHeaders: table.Headers,
			Error:           qerrors.NewUnrecognizedDatasetError(strings.Join(table.Headers, ", ")).Error(),
		}
	}

	mappingResult := e.mapper.MapColumns(embedCtx, table.Headers, classification.RecordType)

	dataset := api.UploadedDataset{
		ID:                uuid.New(),
		RecordType:        classification.RecordType,
		Rows:              remapRows(table, mappingResult.Mapping),
		OriginalHeaders:   table.Headers,
		FieldMapping:      mappingResult.Mapping,
		MappingConfidence: mappingResult.Confidence,
		UploadedAt:        time.Now().UTC(),
	}
	e.store.Put(dataset)

	if e.snapshots != nil {
		if err := e.snapshots.SaveUploadSnapshot(ctx, dataset); err != nil {
			e.logger.Warn("upload snapshot not persisted", "error", err)
		}
	}

	overall := confidence.Aggregate([]float64{classification.Confidence, mappingResult.AverageConfidence})

	e.logger.Info("dataset override installed",
		"record_type", classification.RecordType,
		"method", classification.Method,
		"rows", len(dataset.Rows),
		"mapping_confidence", mappingResult.AverageConfidence,
		"overall_confidence", overall)

	return api.UploadResult{
		Accepted:          true,
		RecordType:        classification.RecordType,
		Confidence:        classification.Confidence,
		OverallConfidence: overall,
		Method:            classification.Method,
		Mapping:           mappingResult,
		RowCount:          len(dataset.Rows),
	}
}

// remapRows re-keys uploaded rows from original headers to canonical field
// names so nothing downstream branches on ad hoc header guessing.
func remapRows(table *ingest.RawTable, fieldMapping map[string]string) []map[string]string {
	headerIdx := make(map[string]int, len(table.Headers))
	for i, h := range table.Headers {
		headerIdx[h] = i
	}

	rows := make([]map[string]string, 0, len(table.Rows))
	for _, raw := range table.Rows {
		row := make(map[string]string, len(fieldMapping))
		for canonical, original := range fieldMapping {
			if idx, ok := headerIdx[original]; ok && idx < len(raw) {
				row[canonical] = strings.TrimSpace(raw[idx])
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ActiveRows returns the catalogue for a record type: override or default.
func (e *Engine) ActiveRows(rt api.RecordType) []api.CatalogEntry {
	return e.store.ActiveRows(rt)
}

// FindTopMatches ranks the active pricing catalogue against a requirement.
func (e *Engine) FindTopMatches(req api.RequirementSpec, topN int) []api.MatchResult {
	entries := e.store.ActiveRows(api.RecordTypePricing)
	return e.matcher.TopMatches(req, entries, topN)
}

// Quote computes a breakdown for the requested lines. SKU lines resolve
// against the active pricing catalogue; unknown SKUs fail the whole quote
// rather than silently pricing at zero.
func (e *Engine) Quote(ctx context.Context, req api.QuoteRequest) (*api.QuotationBreakdown, error) {
	entries := e.store.ActiveRows(api.RecordTypePricing)
	bySKU := make(map[string]api.CatalogEntry, len(entries))
	for _, entry := range entries {
		bySKU[entry.SKU] = entry
	}

	lines := make([]quote.LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		in := quote.LineInput{Description: l.Description, Quantity: l.Quantity}
		if l.SKU != "" {
			entry, ok := bySKU[l.SKU]
			if !ok {
				return nil, qerrors.NewSKUNotFoundError(l.SKU)
			}
			in.Entry = &entry
		} else {
			price, err := decimal.NewFromString(l.UnitPrice)
			if err != nil {
				return nil, &qerrors.QuoteError{
					Code:        qerrors.ErrCodeMalformedTable,
					Message:     "invalid unit price: " + l.UnitPrice,
					Severity:    qerrors.SeverityError,
					Recoverable: true,
				}
			}
			in.UnitPrice = price
		}
		lines = append(lines, in)
	}

	opts := quote.Options{IncludeServices: req.IncludeServices}
	if req.TaxRate != "" {
		rate, err := decimal.NewFromString(req.TaxRate)
		if err == nil {
			opts.TaxRate = rate
		}
	}

	breakdown := e.quoter.Build(lines, opts)
	if e.snapshots != nil {
		if err := e.snapshots.SaveQuotation(ctx, *breakdown); err != nil {
			e.logger.Warn("quotation not persisted", "error", err)
		}
	}
	return breakdown, nil
}

// Modify applies one natural-language instruction to a breakdown.
func (e *Engine) Modify(instruction string, b api.QuotationBreakdown) api.ModifyResult {
	return e.modifier.Apply(instruction, b)
}

// CompareWithDefault summarizes the active override against the built-in
// default for a record type.
func (e *Engine) CompareWithDefault(rt api.RecordType) api.DatasetDiff {
	return e.store.CompareWithDefault(rt)
}

// ClearOverrides drops every session override.
func (e *Engine) ClearOverrides() {
	e.store.Clear()
}
