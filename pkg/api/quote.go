package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineKind distinguishes how a line item entered the breakdown.
type LineKind string

const (
	LineKindMaterial   LineKind = "material"
	LineKindService    LineKind = "service"
	LineKindAdjustment LineKind = "adjustment" // margin/profit line absorbing deltas
)

// LineItem is a single quotation line.
type LineItem struct {
	SKU         string          `json:"sku,omitempty"`
	Description string          `json:"description"`
	Kind        LineKind        `json:"kind"`
	Quantity    float64         `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct float64         `json:"discount_pct,omitempty"`
	GrossTotal  decimal.Decimal `json:"gross_total"`
	NetTotal    decimal.Decimal `json:"net_total"`
}

// ModificationRecord is one applied natural-language amendment.
type ModificationRecord struct {
	Instruction string          `json:"instruction"`
	Intent      string          `json:"intent"`
	Delta       decimal.Decimal `json:"delta"` // signed subtotal change
	AppliedAt   time.Time       `json:"applied_at"`
}

// QuotationBreakdown is the itemized price computation.
//
// Invariants after every mutation:
//
//	TaxAmount  = round2(Subtotal * TaxRate)
//	GrandTotal = Subtotal + TaxAmount
type QuotationBreakdown struct {
	ID                  uuid.UUID            `json:"id"`
	LineItems           []LineItem           `json:"line_items"`
	MaterialSubtotal    decimal.Decimal      `json:"material_subtotal"`
	ServicesSubtotal    decimal.Decimal      `json:"services_subtotal"`
	Subtotal            decimal.Decimal      `json:"subtotal"`
	TaxRate             decimal.Decimal      `json:"tax_rate"`
	TaxAmount           decimal.Decimal      `json:"tax_amount"`
	GrandTotal          decimal.Decimal      `json:"grand_total"`
	Currency            string               `json:"currency"`
	ModificationHistory []ModificationRecord `json:"modification_history,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

// ModifyResult is the Quotation Modifier output.
type ModifyResult struct {
	Success   bool                `json:"success"`
	Intent    string              `json:"intent,omitempty"`
	Changes   []string            `json:"changes,omitempty"`
	Breakdown *QuotationBreakdown `json:"breakdown"`
	Error     string              `json:"error,omitempty"`
	ErrorCode string              `json:"error_code,omitempty"`
	Examples  []string            `json:"examples,omitempty"`
}
