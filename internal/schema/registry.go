// Package schema owns the canonical record types, their field
// descriptions, and the matcher weights and tolerance bands.
package schema

import "cable-quote/pkg/api"

// FieldSpec describes one canonical field. The description feeds the
// semantic similarity comparison against uploaded headers.
type FieldSpec struct {
	Name        string
	Description string
	Required    bool
	Kind        api.AttrKind
}

// Registry holds the static canonical schemas. Immutable after construction.
type Registry struct {
	fields map[api.RecordType][]FieldSpec
	rules  []AttributeRule
}

// NewRegistry builds the built-in schema registry.
func NewRegistry() *Registry {
	return &Registry{
		fields: map[api.RecordType][]FieldSpec{
			api.RecordTypePricing: {
				{Name: "sku", Description: "unique product code or item number identifying the cable", Required: true, Kind: api.KindText},
				{Name: "name", Description: "display name or description of the cable product", Required: true, Kind: api.KindText},
				{Name: api.AttrVoltage, Description: "rated voltage of the cable in kilovolts kV", Kind: api.KindNumeric},
				{Name: api.AttrArea, Description: "conductor cross section area in square millimetres sqmm", Kind: api.KindNumeric},
				{Name: api.AttrCores, Description: "number of cores or conductors in the cable", Kind: api.KindNumeric},
				{Name: api.AttrConductor, Description: "conductor material such as copper or aluminium", Kind: api.KindText},
				{Name: api.AttrInsulation, Description: "insulation type such as XLPE or PVC", Kind: api.KindText},
				{Name: api.AttrArmoured, Description: "whether the cable is armoured with steel wire or strip", Kind: api.KindBoolean},
				{Name: api.AttrTempRating, Description: "maximum operating temperature rating in degrees celsius", Kind: api.KindNumeric},
				{Name: api.AttrStandard, Description: "manufacturing standard such as IS 7098 or IEC 60502", Kind: api.KindText},
				{Name: "unit_price", Description: "price per unit length in rupees INR", Required: true, Kind: api.KindNumeric},
			},
			api.RecordTypeTesting: {
				{Name: "sku", Description: "test identifier or test code", Required: true, Kind: api.KindText},
				{Name: "name", Description: "name of the test or inspection performed", Required: true, Kind: api.KindText},
				{Name: "unit_price", Description: "price charged for the test in rupees INR", Required: true, Kind: api.KindNumeric},
			},
			// Generic supertype used only during classification; a content
			// rule refines it into pricing or testing.
			api.RecordTypeCatalogue: {
				{Name: "sku", Description: "item code or identifier", Required: true, Kind: api.KindText},
				{Name: "name", Description: "item name or description", Required: true, Kind: api.KindText},
				{Name: "unit_price", Description: "price amount cost in rupees INR", Required: true, Kind: api.KindNumeric},
			},
		},
		rules: defaultAttributeRules(),
	}
}

// Fields returns the canonical field specs for a record type.
func (r *Registry) Fields(rt api.RecordType) []FieldSpec {
	return r.fields[rt]
}

// RecordTypes lists the candidate record types in classification order.
func (r *Registry) RecordTypes() []api.RecordType {
	return []api.RecordType{api.RecordTypePricing, api.RecordTypeTesting, api.RecordTypeCatalogue}
}

// AttributeRules returns the weighted comparison rules for spec matching.
func (r *Registry) AttributeRules() []AttributeRule {
	return r.rules
}

// AttributeRule is one weighted, tolerance-aware comparison rule.
// For numeric kinds a deviation within Band1 earns Band1Credit of the
// weight, within Band2 earns Band2Credit; zero bands mean exact-only.
type AttributeRule struct {
	Name        string
	Kind        api.AttrKind
	Weight      float64
	Band1       float64 // fractional deviation, e.g. 0.10
	Band1Credit float64
	Band2       float64
	Band2Credit float64
}

func defaultAttributeRules() []AttributeRule {
	return []AttributeRule{
		{Name: api.AttrVoltage, Kind: api.KindNumeric, Weight: 25, Band1: 0.10, Band1Credit: 0.8, Band2: 0.20, Band2Credit: 0.5},
		{Name: api.AttrArea, Kind: api.KindNumeric, Weight: 25, Band1: 0.10, Band1Credit: 0.8, Band2: 0.25, Band2Credit: 0.5},
		{Name: api.AttrCores, Kind: api.KindNumeric, Weight: 15}, // discrete, exact only
		{Name: api.AttrConductor, Kind: api.KindText, Weight: 15},
		{Name: api.AttrInsulation, Kind: api.KindText, Weight: 10},
		{Name: api.AttrArmoured, Kind: api.KindBoolean, Weight: 5},
		{Name: api.AttrTempRating, Kind: api.KindNumeric, Weight: 3, Band1: 0.10, Band1Credit: 0.8, Band2: 0.20, Band2Credit: 0.5},
		{Name: api.AttrStandard, Kind: api.KindText, Weight: 2},
	}
}

// TypeKeywords are the literal keywords used by the filename heuristic,
// the user-intent heuristic, and the lexical fallback. Order matters:
// earlier entries win, so "testing" outranks the broader pricing words.
type TypeKeywords struct {
	RecordType api.RecordType
	Keywords   []string
}

// ClassifierKeywords returns the ordered keyword table for classification.
func ClassifierKeywords() []TypeKeywords {
	return []TypeKeywords{
		{RecordType: api.RecordTypeTesting, Keywords: []string{"testing", "test", "inspection"}},
		{RecordType: api.RecordTypePricing, Keywords: []string{"pricing", "price", "rate", "quote"}},
		{RecordType: api.RecordTypePricing, Keywords: []string{"cable", "xlpe", "pvc", "conductor", "ht", "lt"}},
	}
}
