package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cable-quote/internal/embedding"
	"cable-quote/pkg/api"
	qerrors "cable-quote/pkg/errors"
)

func newTestEngine(opts ...Option) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(embedding.NewLexicalEmbedder(), logger, opts...)
}

func TestUploadTestingSchedule(t *testing.T) {
	e := newTestEngine()

	result := e.Upload(context.Background(), api.UploadRequest{
		TableText: "sku,name,unit_price\nTST-HV,High Voltage Withstand Test,20000\nTST-IR,Insulation Resistance Test,7000\n",
		Filename:  "supplier_testing_rates.csv",
	})

	require.True(t, result.Accepted, "error: %s", result.Error)
	assert.Equal(t, api.RecordTypeTesting, result.RecordType)
	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, "sku", result.Mapping.Mapping["sku"])

	// Exact headers map at 1.0, so the combined confidence is the
	// geometric mean of that and the filename classification.
	assert.InDelta(t, math.Sqrt(0.95), result.OverallConfidence, 1e-9)

	// The override replaces the built-in schedule.
	rows := e.ActiveRows(api.RecordTypeTesting)
	require.Len(t, rows, 2)
	assert.Equal(t, "TST-HV", rows[0].SKU)
	assert.Equal(t, "20000", rows[0].UnitPrice.String())
}

func TestUploadRenamedHeaders(t *testing.T) {
	e := newTestEngine()

	result := e.Upload(context.Background(), api.UploadRequest{
		TableText: "Test_Name,Price,Code\nHV Withstand,20000,TST-HV\n",
		Intent:    "these are testing charges",
	})

	require.True(t, result.Accepted, "error: %s", result.Error)
	assert.Equal(t, api.RecordTypeTesting, result.RecordType)
	assert.Equal(t, "user-intent", result.Method)

	// "Test_Name" reconciles to the canonical name field.
	assert.Equal(t, "Test_Name", result.Mapping.Mapping["name"])
}

func TestUploadEmptyTableLeavesStoreUntouched(t *testing.T) {
	e := newTestEngine()

	result := e.Upload(context.Background(), api.UploadRequest{TableText: "   "})
	assert.False(t, result.Accepted)
	assert.NotEmpty(t, result.Error)
	assert.Len(t, e.ActiveRows(api.RecordTypeTesting), 6)
	assert.Len(t, e.ActiveRows(api.RecordTypePricing), 10)
}

func TestUploadUnrecognizedReportsHeaders(t *testing.T) {
	e := newTestEngine()

	// Headers with no type signal and no filename or intent hint.
	result := e.Upload(context.Background(), api.UploadRequest{
		TableText: "aaa,bbb\nx,y\n",
	})

	if !result.Accepted {
		assert.Equal(t, api.RecordTypeUnknown, result.RecordType)
		assert.Equal(t, []string{"aaa", "bbb"}, result.DetectedHeaders)
		assert.Contains(t, result.Error, "could not determine record type")
	}
}

func TestFindTopMatchesUsesActiveCatalogue(t *testing.T) {
	e := newTestEngine()

	matches := e.FindTopMatches(api.RequirementSpec{
		VoltageKV: api.Float(11),
		AreaSqmm:  api.Float(240),
		Conductor: api.Str("Copper"),
	}, 3)

	require.Len(t, matches, 3)
	assert.Equal(t, "HT-CU-11-240-3C", matches[0].SKU)
	assert.Equal(t, 100, matches[0].Score)
}

func TestQuoteBySKU(t *testing.T) {
	e := newTestEngine()

	b, err := e.Quote(context.Background(), api.QuoteRequest{
		Lines: []api.QuoteLine{{SKU: "HT-CU-11-240-3C", Quantity: 10}},
	})
	require.NoError(t, err)

	// 10 x 4320 with the 2% tier discount.
	assert.Equal(t, "42336", b.Subtotal.String())
	assert.Equal(t, "49956.48", b.GrandTotal.StringFixed(2))
}

func TestQuoteUnknownSKU(t *testing.T) {
	e := newTestEngine()

	_, err := e.Quote(context.Background(), api.QuoteRequest{
		Lines: []api.QuoteLine{{SKU: "NO-SUCH-SKU", Quantity: 1}},
	})
	require.Error(t, err)

	var qerr *qerrors.QuoteError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, qerrors.ErrCodeSKUNotFound, qerr.Code)
}

func TestQuoteExplicitPriceLine(t *testing.T) {
	e := newTestEngine()

	b, err := e.Quote(context.Background(), api.QuoteRequest{
		Lines: []api.QuoteLine{{Description: "Custom item", UnitPrice: "150.50", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "301", b.Subtotal.String())
}

func TestQuoteInvalidExplicitPrice(t *testing.T) {
	e := newTestEngine()

	_, err := e.Quote(context.Background(), api.QuoteRequest{
		Lines: []api.QuoteLine{{Description: "Bad", UnitPrice: "a lot", Quantity: 1}},
	})
	assert.Error(t, err)
}

func TestModifyRoundTripThroughEngine(t *testing.T) {
	e := newTestEngine()

	b, err := e.Quote(context.Background(), api.QuoteRequest{
		Lines: []api.QuoteLine{{SKU: "HT-CU-11-240-3C", Quantity: 10}},
	})
	require.NoError(t, err)

	result := e.Modify("set total to 500000", *b)
	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, "500000.00", result.Breakdown.GrandTotal.StringFixed(2))
}

func TestClearOverrides(t *testing.T) {
	e := newTestEngine()

	upload := e.Upload(context.Background(), api.UploadRequest{
		TableText: "sku,name,unit_price\nTST-X,Extra Test,100\n",
		Filename:  "testing.csv",
	})
	require.True(t, upload.Accepted)
	require.Len(t, e.ActiveRows(api.RecordTypeTesting), 1)

	e.ClearOverrides()
	assert.Len(t, e.ActiveRows(api.RecordTypeTesting), 6)
}

// recordingSnapshotter captures persisted artifacts for assertions.
type recordingSnapshotter struct {
	uploads    []api.UploadedDataset
	quotations []api.QuotationBreakdown
	fail       bool
}

func (r *recordingSnapshotter) SaveUploadSnapshot(_ context.Context, ds api.UploadedDataset) error {
	if r.fail {
		return errors.New("sink unavailable")
	}
	r.uploads = append(r.uploads, ds)
	return nil
}

func (r *recordingSnapshotter) SaveQuotation(_ context.Context, b api.QuotationBreakdown) error {
	if r.fail {
		return errors.New("sink unavailable")
	}
	r.quotations = append(r.quotations, b)
	return nil
}

func TestSnapshotterReceivesArtifacts(t *testing.T) {
	sink := &recordingSnapshotter{}
	e := newTestEngine(WithSnapshotter(sink))

	upload := e.Upload(context.Background(), api.UploadRequest{
		TableText: "sku,name,unit_price\nTST-X,Extra Test,100\n",
		Filename:  "testing.csv",
	})
	require.True(t, upload.Accepted)
	require.Len(t, sink.uploads, 1)
	assert.Equal(t, api.RecordTypeTesting, sink.uploads[0].RecordType)

	_, err := e.Quote(context.Background(), api.QuoteRequest{
		Lines: []api.QuoteLine{{SKU: "HT-CU-11-240-3C", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Len(t, sink.quotations, 1)
}

func TestSnapshotterFailureDoesNotFailUpload(t *testing.T) {
	sink := &recordingSnapshotter{fail: true}
	e := newTestEngine(WithSnapshotter(sink))

	result := e.Upload(context.Background(), api.UploadRequest{
		TableText: "sku,name,unit_price\nTST-X,Extra Test,100\n",
		Filename:  "testing.csv",
	})
	// Persistence is best-effort; the override still installs.
	assert.True(t, result.Accepted)
	assert.Len(t, e.ActiveRows(api.RecordTypeTesting), 1)
}
