// Package api defines the shared contracts between the reconciliation,
// matching, and quotation components.
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	qerrors "cable-quote/pkg/errors"
)

// RecordType categorizes an uploaded dataset.
type RecordType string

const (
	RecordTypePricing   RecordType = "pricing"   // cable price schedule
	RecordTypeTesting   RecordType = "testing"   // test/inspection price list
	RecordTypeCatalogue RecordType = "catalogue" // generic supertype, refined by content
	RecordTypeUnknown   RecordType = "unknown"
)

// Canonical attribute names shared by the requirement and catalogue sides.
const (
	AttrVoltage    = "voltage_kv"
	AttrArea       = "area_sqmm"
	AttrCores      = "cores"
	AttrConductor  = "conductor"
	AttrInsulation = "insulation"
	AttrArmoured   = "armoured"
	AttrTempRating = "temp_rating_c"
	AttrStandard   = "standard"
)

// AttrKind is the comparison semantics of a canonical attribute.
type AttrKind string

const (
	KindNumeric AttrKind = "numeric"
	KindText    AttrKind = "text"
	KindBoolean AttrKind = "boolean"
)

// AttrValue is a typed attribute value used by the matcher.
type AttrValue struct {
	Kind AttrKind
	Num  float64
	Text string
	Bool bool
}

// RequirementSpec is a sparse buyer requirement. Nil fields were not
// specified and must be skipped during matching.
type RequirementSpec struct {
	VoltageKV   *float64 `json:"voltage_kv,omitempty"`
	AreaSqmm    *float64 `json:"area_sqmm,omitempty"`
	Cores       *float64 `json:"cores,omitempty"`
	Conductor   *string  `json:"conductor,omitempty"`
	Insulation  *string  `json:"insulation,omitempty"`
	Armoured    *bool    `json:"armoured,omitempty"`
	TempRatingC *float64 `json:"temp_rating_c,omitempty"`
	Standard    *string  `json:"standard,omitempty"`
}

// Attributes returns the populated attributes keyed by canonical name.
func (r RequirementSpec) Attributes() map[string]AttrValue {
	return collectAttrs(r.VoltageKV, r.AreaSqmm, r.Cores, r.Conductor,
		r.Insulation, r.Armoured, r.TempRatingC, r.Standard)
}

// CatalogEntry is a priced catalogue row in the same attribute space as
// RequirementSpec, plus identity and price.
type CatalogEntry struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`

	VoltageKV   *float64 `json:"voltage_kv,omitempty"`
	AreaSqmm    *float64 `json:"area_sqmm,omitempty"`
	Cores       *float64 `json:"cores,omitempty"`
	Conductor   *string  `json:"conductor,omitempty"`
	Insulation  *string  `json:"insulation,omitempty"`
	Armoured    *bool    `json:"armoured,omitempty"`
	TempRatingC *float64 `json:"temp_rating_c,omitempty"`
	Standard    *string  `json:"standard,omitempty"`
}

// Attributes returns the populated attributes keyed by canonical name.
func (e CatalogEntry) Attributes() map[string]AttrValue {
	return collectAttrs(e.VoltageKV, e.AreaSqmm, e.Cores, e.Conductor,
		e.Insulation, e.Armoured, e.TempRatingC, e.Standard)
}

func collectAttrs(voltage, area, cores *float64, conductor, insulation *string, armoured *bool, temp *float64, standard *string) map[string]AttrValue {
	attrs := make(map[string]AttrValue)
	if voltage != nil {
		attrs[AttrVoltage] = AttrValue{Kind: KindNumeric, Num: *voltage}
	}
	if area != nil {
		attrs[AttrArea] = AttrValue{Kind: KindNumeric, Num: *area}
	}
	if cores != nil {
		attrs[AttrCores] = AttrValue{Kind: KindNumeric, Num: *cores}
	}
	if conductor != nil {
		attrs[AttrConductor] = AttrValue{Kind: KindText, Text: *conductor}
	}
	if insulation != nil {
		attrs[AttrInsulation] = AttrValue{Kind: KindText, Text: *insulation}
	}
	if armoured != nil {
		attrs[AttrArmoured] = AttrValue{Kind: KindBoolean, Bool: *armoured}
	}
	if temp != nil {
		attrs[AttrTempRating] = AttrValue{Kind: KindNumeric, Num: *temp}
	}
	if standard != nil {
		attrs[AttrStandard] = AttrValue{Kind: KindText, Text: *standard}
	}
	return attrs
}

// Float returns a pointer to v. Convenience for building sparse specs.
func Float(v float64) *float64 { return &v }

// Str returns a pointer to v.
func Str(v string) *string { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// UploadedDataset is a reconciled upload held by the Session Override Store.
type UploadedDataset struct {
	ID                uuid.UUID           `json:"id"`
	RecordType        RecordType          `json:"record_type"`
	Rows              []map[string]string `json:"rows"` // canonical field -> raw cell, in upload order
	OriginalHeaders   []string            `json:"original_headers"`
	FieldMapping      map[string]string   `json:"field_mapping"`      // canonical -> original header
	MappingConfidence map[string]float64  `json:"mapping_confidence"` // canonical -> [0,1]
	UploadedAt        time.Time           `json:"uploaded_at"`
}

// Classification is the Dataset Classifier output.
type Classification struct {
	RecordType RecordType `json:"record_type"`
	Confidence float64    `json:"confidence"`
	Method     string     `json:"method"`
}

// MappingResult is the Column Mapper output.
type MappingResult struct {
	Mapping           map[string]string  `json:"mapping"`    // canonical -> uploaded header
	Confidence        map[string]float64 `json:"confidence"` // canonical -> [0,1]
	AverageConfidence float64            `json:"average_confidence"`
	UnmappedCanonical []string           `json:"unmapped_canonical,omitempty"`
	UnmappedUploaded  []string           `json:"unmapped_uploaded,omitempty"`

	// Warnings carries structured degradation notices (unmapped fields,
	// embedder fallback) without failing the upload.
	Warnings []*qerrors.QuoteError `json:"warnings,omitempty"`
}

// MatchResult scores one catalogue entry against a requirement.
type MatchResult struct {
	SKU                 string       `json:"sku"`
	Score               int          `json:"score"` // 0..100
	MatchedAttributes   []string     `json:"matched_attributes"`
	PartialAttributes   []string     `json:"partial_attributes"`
	UnmatchedAttributes []string     `json:"unmatched_attributes"`
	Entry               CatalogEntry `json:"entry"`
}
