// Package quote computes itemized price breakdowns: material lines with
// quantity discounts, order-value-scaled service lines, and GST.
package quote

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cable-quote/pkg/api"
	"cable-quote/pkg/money"
)

// DefaultTaxRate is the standard GST rate applied when none is given.
var DefaultTaxRate = decimal.NewFromFloat(0.18)

// Discount tiers: a line's quantity unlocks a stepped percentage off its
// gross total. Deterministic breakpoints, no interpolation.
var discountTiers = []struct {
	MinQty float64
	Pct    float64
}{
	{100, 12},
	{50, 8},
	{20, 5},
	{10, 2},
}

// Service line scaling: base prices grow with order value as
// clamp(sqrt(orderValue/reference), low, high).
const (
	serviceReferenceValue = 1_000_000.0
	serviceScaleLow       = 0.5
	serviceScaleHigh      = 2.0
)

var baseServices = []struct {
	SKU   string
	Name  string
	Price string
}{
	{"SVC-DEL", "Packing, Freight & Delivery", "15000.00"},
	{"SVC-TEST", "Routine Testing & Certification", "25000.00"},
	{"SVC-DOC", "Documentation & QA Dossier", "5000.00"},
}

// LineInput is one requested line: a resolved catalogue entry or an
// explicit unit price.
type LineInput struct {
	Entry       *api.CatalogEntry
	Description string
	UnitPrice   decimal.Decimal // used when Entry is nil
	Quantity    float64
}

// Options controls the breakdown computation.
type Options struct {
	IncludeServices bool
	TaxRate         decimal.Decimal // zero means DefaultTaxRate
}

// Engine builds quotation breakdowns. Stateless between calls.
type Engine struct{}

// NewEngine creates a quotation engine.
func NewEngine() *Engine { return &Engine{} }

// Build computes a full breakdown from the requested lines.
func (e *Engine) Build(lines []LineInput, opts Options) *api.QuotationBreakdown {
	taxRate := opts.TaxRate
	if taxRate.IsZero() {
		taxRate = DefaultTaxRate
	}

	b := &api.QuotationBreakdown{
		ID:        uuid.New(),
		TaxRate:   taxRate,
		Currency:  "INR",
		CreatedAt: time.Now().UTC(),
	}

	for _, in := range lines {
		item := api.LineItem{
			Description: in.Description,
			Kind:        api.LineKindMaterial,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		}
		if in.Entry != nil {
			item.SKU = in.Entry.SKU
			item.UnitPrice = in.Entry.UnitPrice
			if item.Description == "" {
				item.Description = in.Entry.Name
			}
		}

		qty := decimal.NewFromFloat(in.Quantity)
		item.GrossTotal = money.Round2(item.UnitPrice.Mul(qty))
		item.DiscountPct = DiscountPct(in.Quantity)
		discount := item.GrossTotal.Mul(decimal.NewFromFloat(item.DiscountPct)).Div(decimal.NewFromInt(100))
		item.NetTotal = money.Round2(item.GrossTotal.Sub(discount))

		b.LineItems = append(b.LineItems, item)
	}

	if opts.IncludeServices {
		e.appendServiceLines(b)
	}

	Recompute(b)
	return b
}

// appendServiceLines adds the ancillary service items, each scaled by a
// monotonic function of the material order value.
func (e *Engine) appendServiceLines(b *api.QuotationBreakdown) {
	var orderValue float64
	for _, item := range b.LineItems {
		if item.Kind == api.LineKindMaterial {
			v, _ := item.NetTotal.Float64()
			orderValue += v
		}
	}

	scale := ServiceScale(orderValue)
	scaleDec := decimal.NewFromFloat(scale)

	for _, svc := range baseServices {
		base, _ := decimal.NewFromString(svc.Price)
		total := money.Round2(base.Mul(scaleDec))
		b.LineItems = append(b.LineItems, api.LineItem{
			SKU:         svc.SKU,
			Description: svc.Name,
			Kind:        api.LineKindService,
			Quantity:    1,
			UnitPrice:   total,
			GrossTotal:  total,
			NetTotal:    total,
		})
	}
}

// DiscountPct returns the stepped quantity discount percentage.
func DiscountPct(qty float64) float64 {
	for _, tier := range discountTiers {
		if qty >= tier.MinQty {
			return tier.Pct
		}
	}
	return 0
}

// ServiceScale returns the bounded order-value multiplier for service
// prices.
func ServiceScale(orderValue float64) float64 {
	if orderValue <= 0 {
		return serviceScaleLow
	}
	scale := math.Sqrt(orderValue / serviceReferenceValue)
	if scale < serviceScaleLow {
		return serviceScaleLow
	}
	if scale > serviceScaleHigh {
		return serviceScaleHigh
	}
	return scale
}

// Recompute re-derives every total from the line items so the breakdown
// invariants hold after any mutation:
//
//	TaxAmount  = round2(Subtotal * TaxRate)
//	GrandTotal = Subtotal + TaxAmount
func Recompute(b *api.QuotationBreakdown) {
	material := decimal.Zero
	services := decimal.Zero
	adjustments := decimal.Zero

	for _, item := range b.LineItems {
		switch item.Kind {
		case api.LineKindMaterial:
			material = material.Add(item.NetTotal)
		case api.LineKindService:
			services = services.Add(item.NetTotal)
		case api.LineKindAdjustment:
			adjustments = adjustments.Add(item.NetTotal)
		}
	}

	b.MaterialSubtotal = money.Round2(material)
	b.ServicesSubtotal = money.Round2(services)
	b.Subtotal = money.Round2(material.Add(services).Add(adjustments))
	b.TaxAmount = money.Round2(b.Subtotal.Mul(b.TaxRate))
	b.GrandTotal = b.Subtotal.Add(b.TaxAmount)
}
