package modify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntents(t *testing.T) {
	tests := []struct {
		instruction string
		kind        IntentKind
		value       string
	}{
		{"set total to 500000", IntentSetTotal, "500000"},
		{"total should be 450000", IntentSetTotal, "450000"},
		{"set the total at rs. 2,50,000", IntentSetTotal, "250000"},
		{"set total to 5 lakh", IntentSetTotal, "500000"},
		{"set total to 2 crore", IntentSetTotal, "20000000"},
		{"set total to 150k", IntentSetTotal, "150000"},

		{"increase by 10%", IntentPctIncrease, "10"},
		{"raise the price by 7.5 percent", IntentPctIncrease, "7.5"},
		{"add 10%", IntentPctIncrease, "10"},
		{"15% increase", IntentPctIncrease, "15"},

		{"reduce by 5%", IntentPctDecrease, "5"},
		{"give a discount of 12%", IntentPctDecrease, "12"},
		{"10% off", IntentPctDecrease, "10"},

		{"set material cost to 300000", IntentSetMaterial, "300000"},
		{"material should be 4 lakh", IntentSetMaterial, "400000"},

		{"set services to 50000", IntentSetServices, "50000"},
		{"testing charges to be 30000", IntentSetServices, "30000"},

		{"15% margin", IntentMarginPct, "15"},
		{"apply a profit margin of 20%", IntentMarginPct, "20"},

		{"add 25000", IntentAddAmount, "25000"},
		{"add rs 1 lakh", IntentAddAmount, "100000"},

		{"make it around 5 lakh", IntentApproxTotal, "500000"},
		{"roughly 750000", IntentApproxTotal, "750000"},
		{"approx 12,50,000", IntentApproxTotal, "1250000"},
	}

	for _, tt := range tests {
		t.Run(tt.instruction, func(t *testing.T) {
			intent, rule, ok := Parse(tt.instruction)
			require.True(t, ok, "expected a parse for %q", tt.instruction)
			assert.Equal(t, tt.kind, intent.Kind, "rule %q", rule)
			assert.Equal(t, tt.value, intent.Value.String())
		})
	}
}

func TestParseVagueFallbacks(t *testing.T) {
	tests := []struct {
		instruction string
		kind        IntentKind
		value       string
	}{
		{"double it", IntentPctIncrease, "100"},
		{"cut it in half", IntentPctDecrease, "50"},
		{"make it a bit higher", IntentPctIncrease, "10"},
		{"needs to be cheaper", IntentPctDecrease, "10"},
	}
	for _, tt := range tests {
		t.Run(tt.instruction, func(t *testing.T) {
			intent, rule, ok := Parse(tt.instruction)
			require.True(t, ok)
			assert.Equal(t, "vague-language fallback", rule)
			assert.Equal(t, tt.kind, intent.Kind)
			assert.Equal(t, tt.value, intent.Value.String())
		})
	}
}

func TestParseUnrecognized(t *testing.T) {
	for _, instruction := range []string{"", "   ", "deliver by friday", "call the customer"} {
		_, _, ok := Parse(instruction)
		assert.False(t, ok, "expected no parse for %q", instruction)
	}
}

func TestParseFirstMatchWins(t *testing.T) {
	// Mentions both a total target and a percentage; the absolute total
	// rule is tried first so it wins.
	intent, rule, ok := Parse("set total to 500000 which is about a 10% increase")
	require.True(t, ok)
	assert.Equal(t, "absolute total target", rule)
	assert.Equal(t, IntentSetTotal, intent.Kind)
	assert.Equal(t, "500000", intent.Value.String())
}

func TestParseCaseInsensitive(t *testing.T) {
	intent, _, ok := Parse("INCREASE BY 10%")
	require.True(t, ok)
	assert.Equal(t, IntentPctIncrease, intent.Kind)
}

func TestMultiplierWords(t *testing.T) {
	tests := []struct {
		word  string
		value string
	}{
		{"thousand", "1000"},
		{"k", "1000"},
		{"lakh", "100000"},
		{"lakhs", "100000"},
		{"lac", "100000"},
		{"crore", "10000000"},
		{"cr", "10000000"},
		{"million", "1000000"},
		{"", "1"},
		{"bogus", "1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.value, multiplierFor(tt.word).String(), "word %q", tt.word)
	}
}
