package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cable-quote/internal/schema"
	"cable-quote/pkg/api"
)

func testCatalogue() []api.CatalogEntry {
	entry := func(sku string, voltage, area, cores float64, conductor, insulation string, armoured bool) api.CatalogEntry {
		return api.CatalogEntry{
			SKU:        sku,
			Name:       sku,
			UnitPrice:  decimal.NewFromInt(1000),
			VoltageKV:  api.Float(voltage),
			AreaSqmm:   api.Float(area),
			Cores:      api.Float(cores),
			Conductor:  api.Str(conductor),
			Insulation: api.Str(insulation),
			Armoured:   api.Bool(armoured),
		}
	}
	return []api.CatalogEntry{
		entry("CU-11-240", 11, 240, 3, "Copper", "XLPE", true),
		entry("AL-11-240", 11, 240, 3, "Aluminium", "XLPE", true),
		entry("CU-11-120", 11, 120, 3, "Copper", "XLPE", true),
		entry("CU-33-240", 33, 240, 3, "Copper", "XLPE", true),
	}
}

func TestScoreExactSubset(t *testing.T) {
	m := New(schema.NewRegistry())

	// Every requested attribute matches exactly, so the score is 100 even
	// though the requirement omits most attributes.
	req := api.RequirementSpec{
		VoltageKV: api.Float(11),
		AreaSqmm:  api.Float(240),
		Conductor: api.Str("Copper"),
	}
	result := m.Score(req, testCatalogue()[0])

	assert.Equal(t, 100, result.Score)
	assert.ElementsMatch(t, []string{api.AttrVoltage, api.AttrArea, api.AttrConductor}, result.MatchedAttributes)
	assert.Empty(t, result.PartialAttributes)
	assert.Empty(t, result.UnmatchedAttributes)
}

func TestScoreConductorMismatch(t *testing.T) {
	m := New(schema.NewRegistry())

	req := api.RequirementSpec{
		VoltageKV: api.Float(11),
		AreaSqmm:  api.Float(240),
		Conductor: api.Str("Copper"),
	}
	result := m.Score(req, testCatalogue()[1]) // aluminium

	// voltage 25 + area 25 earned out of 65 applicable.
	assert.Equal(t, 77, result.Score)
	assert.Contains(t, result.UnmatchedAttributes, api.AttrConductor)
}

func TestScoreToleranceBands(t *testing.T) {
	m := New(schema.NewRegistry())

	tests := []struct {
		name     string
		reqArea  float64
		expected int
		partial  bool
	}{
		// deviation |240-264|/264 = 9.1%, inside the 10% band at 0.8 credit:
		// (25 + 20) / 50 = 90.
		{"within first band", 264, 90, true},
		// deviation |240-300|/300 = 20%, inside the 25% band at 0.5 credit:
		// (25 + 12.5) / 50 = 75.
		{"within second band", 300, 75, true},
		// deviation |240-600|/600 = 60%, outside both bands: 25 / 50 = 50.
		{"outside both bands", 600, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := api.RequirementSpec{
				VoltageKV: api.Float(11),
				AreaSqmm:  api.Float(tt.reqArea),
			}
			result := m.Score(req, testCatalogue()[0])
			assert.Equal(t, tt.expected, result.Score)
			if tt.partial {
				assert.Contains(t, result.PartialAttributes, api.AttrArea)
			} else {
				assert.Contains(t, result.UnmatchedAttributes, api.AttrArea)
			}
		})
	}
}

func TestScoreCoresExactOnly(t *testing.T) {
	m := New(schema.NewRegistry())

	// Cores carry no tolerance bands: 3.5 against 3 earns nothing even
	// though the deviation is small.
	req := api.RequirementSpec{Cores: api.Float(3.5)}
	result := m.Score(req, testCatalogue()[0])
	assert.Equal(t, 0, result.Score)
	assert.Contains(t, result.UnmatchedAttributes, api.AttrCores)
}

func TestScoreTextCaseInsensitive(t *testing.T) {
	m := New(schema.NewRegistry())

	req := api.RequirementSpec{Conductor: api.Str("  copper ")}
	result := m.Score(req, testCatalogue()[0])
	assert.Equal(t, 100, result.Score)
}

func TestScoreEntryMissingAttribute(t *testing.T) {
	m := New(schema.NewRegistry())

	// The requirement asks for a standard the entry does not declare; the
	// attribute stays applicable but earns nothing.
	req := api.RequirementSpec{
		VoltageKV: api.Float(11),
		Standard:  api.Str("IS 7098"),
	}
	result := m.Score(req, testCatalogue()[0])
	// 25 / (25 + 2) = 92.59 -> 93
	assert.Equal(t, 93, result.Score)
	assert.Contains(t, result.UnmatchedAttributes, api.AttrStandard)
}

func TestScoreEmptyRequirement(t *testing.T) {
	m := New(schema.NewRegistry())

	result := m.Score(api.RequirementSpec{}, testCatalogue()[0])
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.MatchedAttributes)
}

func TestTopMatchesRanking(t *testing.T) {
	m := New(schema.NewRegistry())
	entries := testCatalogue()

	req := api.RequirementSpec{
		VoltageKV: api.Float(11),
		AreaSqmm:  api.Float(240),
		Conductor: api.Str("Copper"),
	}
	results := m.TopMatches(req, entries, 3)

	require.Len(t, results, 3)
	assert.Equal(t, "CU-11-240", results[0].SKU)
	assert.Equal(t, 100, results[0].Score)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestTopMatchesTieBreakInsertionOrder(t *testing.T) {
	m := New(schema.NewRegistry())
	entries := testCatalogue()

	// An empty requirement scores every entry zero with zero exact
	// matches, so catalogue order decides.
	results := m.TopMatches(api.RequirementSpec{}, entries, len(entries))
	require.Len(t, results, len(entries))
	for i, entry := range entries {
		assert.Equal(t, entry.SKU, results[i].SKU)
	}
}

func TestTopMatchesDefaultN(t *testing.T) {
	m := New(schema.NewRegistry())

	results := m.TopMatches(api.RequirementSpec{VoltageKV: api.Float(11)}, testCatalogue(), 0)
	assert.Len(t, results, DefaultTopN)
}

func TestTopMatchesFewerEntriesThanN(t *testing.T) {
	m := New(schema.NewRegistry())

	results := m.TopMatches(api.RequirementSpec{}, testCatalogue()[:2], 10)
	assert.Len(t, results, 2)
}
