package modify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cable-quote/internal/quote"
	"cable-quote/pkg/api"
	qerrors "cable-quote/pkg/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// breakdownWith builds a recomputed breakdown with one material line of
// the given net value under 18% GST.
func breakdownWith(net string) api.QuotationBreakdown {
	b := api.QuotationBreakdown{
		TaxRate:  dec("0.18"),
		Currency: "INR",
		LineItems: []api.LineItem{{
			SKU:         "CU-11-240",
			Description: "11kV Cable",
			Kind:        api.LineKindMaterial,
			Quantity:    1,
			UnitPrice:   dec(net),
			GrossTotal:  dec(net),
			NetTotal:    dec(net),
		}},
	}
	quote.Recompute(&b)
	return b
}

func TestApplySetTotal(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("380160.00")

	result := m.Apply("set total to 500000", b)
	require.True(t, result.Success, "error: %s", result.Error)

	// The grand total lands exactly on the target under the current tax
	// rate, with the delta absorbed into a margin adjustment line.
	assert.True(t, result.Breakdown.GrandTotal.Equal(dec("500000.00")),
		"grand %s", result.Breakdown.GrandTotal)

	var margin *api.LineItem
	for i := range result.Breakdown.LineItems {
		if result.Breakdown.LineItems[i].Kind == api.LineKindAdjustment {
			margin = &result.Breakdown.LineItems[i]
		}
	}
	require.NotNil(t, margin, "expected a margin adjustment line")
	assert.Equal(t, "ADJ-MARGIN", margin.SKU)

	// Material lines stay auditable against their catalogue origin.
	assert.True(t, result.Breakdown.LineItems[0].NetTotal.Equal(dec("380160.00")))
}

func TestApplyPercentageIncrease(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("100000.00")

	result := m.Apply("increase by 10%", b)
	require.True(t, result.Success)

	assert.True(t, result.Breakdown.Subtotal.Equal(dec("110000.00")),
		"subtotal %s", result.Breakdown.Subtotal)
	assert.True(t, result.Breakdown.GrandTotal.Equal(dec("129800.00")))
}

func TestApplyDoubleIt(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("100000.00")

	result := m.Apply("double it", b)
	require.True(t, result.Success)
	assert.True(t, result.Breakdown.Subtotal.Equal(dec("200000.00")))
	assert.True(t, result.Breakdown.GrandTotal.Equal(dec("236000.00")))
}

func TestApplyIncreaseThenInverseDecreaseRoundTrips(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("50000.00")
	originalGrand := b.GrandTotal

	up := m.Apply("increase by 10%", b)
	require.True(t, up.Success)
	down := m.Apply("reduce by 9.09%", *up.Breakdown)
	require.True(t, down.Success)

	// 9.09% is the truncated inverse of +10%, so the result is within one
	// currency unit of where it started.
	diff := down.Breakdown.GrandTotal.Sub(originalGrand).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.NewFromInt(1)),
		"grand drifted by %s", diff)
}

func TestApplyAddAmount(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("100000.00")

	result := m.Apply("add 25000", b)
	require.True(t, result.Success)
	assert.True(t, result.Breakdown.Subtotal.Equal(dec("125000.00")))
}

func TestApplySetMaterialScalesLines(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("100000.00")

	result := m.Apply("set material cost to 300000", b)
	require.True(t, result.Success)
	assert.True(t, result.Breakdown.LineItems[0].NetTotal.Equal(dec("300000.00")))
	assert.True(t, result.Breakdown.MaterialSubtotal.Equal(dec("300000.00")))
}

func TestApplySetServicesWithoutServiceLines(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("100000.00")

	result := m.Apply("set services to 50000", b)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "service")
	// The input breakdown comes back untouched.
	assert.True(t, result.Breakdown.Subtotal.Equal(b.Subtotal))
}

func TestApplyMarginPct(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("100000.00")

	result := m.Apply("15% margin", b)
	require.True(t, result.Success)
	// Margin is set to 15% of the material+services cost base.
	assert.True(t, result.Breakdown.Subtotal.Equal(dec("115000.00")))
}

func TestApplyUnparseable(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("100000.00")

	result := m.Apply("deliver by friday", b)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "could not interpret")
	assert.Equal(t, qerrors.ErrCodeUnparseableIntent, result.ErrorCode)
	assert.NotEmpty(t, result.Examples)
	assert.True(t, result.Breakdown.Subtotal.Equal(b.Subtotal))
	assert.Empty(t, result.Breakdown.ModificationHistory)
}

func TestApplyNegativeTotalRejected(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("100000.00")

	result := m.Apply("set total to 0", b)
	assert.False(t, result.Success)
	assert.True(t, result.Breakdown.Subtotal.Equal(b.Subtotal))
}

func TestApplyRecordsHistory(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("100000.00")

	first := m.Apply("increase by 10%", b)
	require.True(t, first.Success)
	second := m.Apply("add 5000", *first.Breakdown)
	require.True(t, second.Success)

	require.Len(t, second.Breakdown.ModificationHistory, 2)
	assert.Equal(t, "increase by 10%", second.Breakdown.ModificationHistory[0].Instruction)
	assert.Equal(t, "add 5000", second.Breakdown.ModificationHistory[1].Instruction)
	assert.True(t, second.Breakdown.ModificationHistory[1].Delta.Equal(dec("5000.00")))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	m := NewModifier()
	b := breakdownWith("100000.00")

	_ = m.Apply("double it", b)
	assert.True(t, b.Subtotal.Equal(dec("100000.00")))
	assert.Len(t, b.LineItems, 1)
}
