package modify

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cable-quote/internal/quote"
	"cable-quote/pkg/api"
	qerrors "cable-quote/pkg/errors"
	"cable-quote/pkg/money"
)

// Example phrasings returned alongside an unparseable-instruction error.
var examplePhrasings = []string{
	"set total to 500000",
	"increase by 10%",
	"reduce by 5%",
	"make it around 5 lakh",
	"add 25000",
	"set material cost to 300000",
	"15% margin",
	"double it",
}

const marginSKU = "ADJ-MARGIN"

var hundred = decimal.NewFromInt(100)

// Modifier applies free-text amendment instructions to breakdowns.
// Stateless between calls; the caller owns the breakdown.
type Modifier struct{}

// NewModifier creates a quotation modifier.
func NewModifier() *Modifier { return &Modifier{} }

// Apply parses the instruction and applies exactly one intent to a copy of
// the breakdown. On failure the input breakdown is returned unmodified.
// Deltas that target the total are absorbed into a margin adjustment line
// so the material and service lines stay auditable against their
// catalogue origin.
func (m *Modifier) Apply(instruction string, b api.QuotationBreakdown) api.ModifyResult {
	intent, ruleName, ok := Parse(instruction)
	if !ok {
		qerr := qerrors.NewUnparseableIntentError(instruction)
		return api.ModifyResult{
			Success:   false,
			Breakdown: &b,
			Error:     qerr.Message,
			ErrorCode: qerr.Code,
			Examples:  examplePhrasings,
		}
	}

	work := cloneBreakdown(b)
	changes, err := m.applyIntent(intent, work)
	if err != nil {
		return api.ModifyResult{
			Success:   false,
			Intent:    string(intent.Kind),
			Breakdown: &b,
			Error:     err.Error(),
			Examples:  examplePhrasings,
		}
	}

	quote.Recompute(work)
	work.ModificationHistory = append(work.ModificationHistory, api.ModificationRecord{
		Instruction: instruction,
		Intent:      string(intent.Kind),
		Delta:       work.Subtotal.Sub(b.Subtotal),
		AppliedAt:   time.Now().UTC(),
	})

	return api.ModifyResult{
		Success:   true,
		Intent:    ruleName,
		Changes:   changes,
		Breakdown: work,
	}
}

func (m *Modifier) applyIntent(intent Intent, b *api.QuotationBreakdown) ([]string, error) {
	switch intent.Kind {
	case IntentSetTotal, IntentApproxTotal:
		return m.targetGrandTotal(b, intent.Value)

	case IntentPctIncrease:
		delta := money.Round2(b.Subtotal.Mul(intent.Value).Div(hundred))
		m.adjustMargin(b, delta)
		return []string{fmt.Sprintf("increased subtotal by %s%% (%s)", intent.Value, money.FormatINR(delta))}, nil

	case IntentPctDecrease:
		delta := money.Round2(b.Subtotal.Mul(intent.Value).Div(hundred)).Neg()
		m.adjustMargin(b, delta)
		return []string{fmt.Sprintf("decreased subtotal by %s%% (%s)", intent.Value, money.FormatINR(delta))}, nil

	case IntentAddAmount:
		m.adjustMargin(b, intent.Value)
		return []string{fmt.Sprintf("added %s to subtotal", money.FormatINR(intent.Value))}, nil

	case IntentSetMaterial:
		return m.scaleLines(b, api.LineKindMaterial, intent.Value, "material")

	case IntentSetServices:
		return m.scaleLines(b, api.LineKindService, intent.Value, "service")

	case IntentMarginPct:
		base := b.MaterialSubtotal.Add(b.ServicesSubtotal)
		target := money.Round2(base.Mul(intent.Value).Div(hundred))
		m.setMargin(b, target)
		return []string{fmt.Sprintf("set margin to %s%% of cost (%s)", intent.Value, money.FormatINR(target))}, nil
	}
	return nil, fmt.Errorf("unsupported intent: %s", intent.Kind)
}

// targetGrandTotal back-computes the subtotal that yields the requested
// grand total under the current tax rate, absorbing the difference into
// the margin line.
func (m *Modifier) targetGrandTotal(b *api.QuotationBreakdown, target decimal.Decimal) ([]string, error) {
	if target.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("target total must be positive, got %s", target)
	}
	one := decimal.NewFromInt(1)
	targetSubtotal := money.Round2(target.Div(one.Add(b.TaxRate)))
	delta := targetSubtotal.Sub(b.Subtotal)
	m.adjustMargin(b, delta)
	return []string{fmt.Sprintf("adjusted margin by %s to target grand total %s",
		money.FormatINR(delta), money.FormatINR(target))}, nil
}

// scaleLines scales all lines of one kind so their sum hits the target.
func (m *Modifier) scaleLines(b *api.QuotationBreakdown, kind api.LineKind, target decimal.Decimal, label string) ([]string, error) {
	current := decimal.Zero
	for _, item := range b.LineItems {
		if item.Kind == kind {
			current = current.Add(item.NetTotal)
		}
	}
	if current.IsZero() {
		return nil, fmt.Errorf("breakdown has no %s lines to adjust", label)
	}
	if target.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("target %s cost must not be negative, got %s", label, target)
	}

	factor := target.Div(current)
	for i := range b.LineItems {
		if b.LineItems[i].Kind != kind {
			continue
		}
		b.LineItems[i].GrossTotal = money.Round2(b.LineItems[i].GrossTotal.Mul(factor))
		b.LineItems[i].NetTotal = money.Round2(b.LineItems[i].NetTotal.Mul(factor))
	}
	return []string{fmt.Sprintf("scaled %s lines from %s to %s",
		label, money.FormatINR(current), money.FormatINR(target))}, nil
}

// adjustMargin adds delta to the adjustable margin line, creating it on
// first use.
func (m *Modifier) adjustMargin(b *api.QuotationBreakdown, delta decimal.Decimal) {
	idx := m.marginIndex(b)
	b.LineItems[idx].NetTotal = money.Round2(b.LineItems[idx].NetTotal.Add(delta))
	b.LineItems[idx].GrossTotal = b.LineItems[idx].NetTotal
	b.LineItems[idx].UnitPrice = b.LineItems[idx].NetTotal
}

// setMargin replaces the margin line value outright.
func (m *Modifier) setMargin(b *api.QuotationBreakdown, value decimal.Decimal) {
	idx := m.marginIndex(b)
	b.LineItems[idx].NetTotal = value
	b.LineItems[idx].GrossTotal = value
	b.LineItems[idx].UnitPrice = value
}

func (m *Modifier) marginIndex(b *api.QuotationBreakdown) int {
	for i := range b.LineItems {
		if b.LineItems[i].Kind == api.LineKindAdjustment {
			return i
		}
	}
	b.LineItems = append(b.LineItems, api.LineItem{
		SKU:         marginSKU,
		Description: "Margin Adjustment",
		Kind:        api.LineKindAdjustment,
		Quantity:    1,
	})
	return len(b.LineItems) - 1
}

func cloneBreakdown(b api.QuotationBreakdown) *api.QuotationBreakdown {
	out := b
	out.LineItems = make([]api.LineItem, len(b.LineItems))
	copy(out.LineItems, b.LineItems)
	out.ModificationHistory = make([]api.ModificationRecord, len(b.ModificationHistory))
	copy(out.ModificationHistory, b.ModificationHistory)
	return &out
}
