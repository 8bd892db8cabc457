// Package modify parses free-text amendment instructions into structured
// modification intents and reapplies them to a quotation breakdown while
// preserving its arithmetic invariants.
package modify

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// IntentKind is the closed set of supported modification intents.
type IntentKind string

const (
	IntentSetTotal    IntentKind = "set_total"
	IntentPctIncrease IntentKind = "pct_increase"
	IntentPctDecrease IntentKind = "pct_decrease"
	IntentSetMaterial IntentKind = "set_material"
	IntentSetServices IntentKind = "set_services"
	IntentMarginPct   IntentKind = "margin_pct"
	IntentAddAmount   IntentKind = "add_amount"
	IntentApproxTotal IntentKind = "approx_total"
)

// Intent is the structured delta extracted from one instruction.
type Intent struct {
	Kind  IntentKind
	Value decimal.Decimal // absolute amount or percentage, per Kind
}

const (
	numPat  = `([0-9][0-9,]*(?:\.[0-9]+)?)`
	multPat = `\s*(thousand|k\b|lakhs?|lacs?|crores?|cr\b|million|mn\b)?`
	curPat  = `(?:rs\.?|inr|₹)?\s*`
)

// intentRule pairs a pattern with an extractor. Rules are tried in slice
// order and the first match wins, so priority is inspectable here rather
// than buried in control flow.
type intentRule struct {
	name    string
	pattern *regexp.Regexp
	extract func(groups []string) (Intent, bool)
}

var rules = []intentRule{
	{
		name:    "absolute total target",
		pattern: regexp.MustCompile(`total[^0-9%]*?(?:\bto\b|\bat\b|\bbe\b|=)\s*` + curPat + numPat + multPat),
		extract: amountIntent(IntentSetTotal),
	},
	{
		name:    "percentage increase",
		pattern: regexp.MustCompile(`(?:increase|raise|hike|mark\s*up|add)[^0-9%]*?` + numPat + `\s*(?:%|percent)()|` + numPat + `\s*(?:%|percent)\s*(?:increase|more|higher|hike|up)()`),
		extract: percentIntent(IntentPctIncrease),
	},
	{
		name:    "percentage decrease",
		pattern: regexp.MustCompile(`(?:decrease|reduce|cut|lower|drop|discount)[^0-9%]*?` + numPat + `\s*(?:%|percent)()|` + numPat + `\s*(?:%|percent)\s*(?:decrease|less|lower|off|down)()`),
		extract: percentIntent(IntentPctDecrease),
	},
	{
		name:    "absolute material target",
		pattern: regexp.MustCompile(`material[^0-9%]*?(?:\bto\b|\bat\b|\bbe\b|=)\s*` + curPat + numPat + multPat),
		extract: amountIntent(IntentSetMaterial),
	},
	{
		name:    "absolute service target",
		pattern: regexp.MustCompile(`(?:services?|testing|delivery)[^0-9%]*?(?:\bto\b|\bat\b|\bbe\b|=)\s*` + curPat + numPat + multPat),
		extract: amountIntent(IntentSetServices),
	},
	{
		name:    "profit margin percentage",
		pattern: regexp.MustCompile(numPat + `\s*(?:%|percent)\s*(?:profit|margin)|(?:profit|margin)[^0-9%]*?` + numPat + `\s*(?:%|percent)`),
		extract: func(groups []string) (Intent, bool) {
			v, ok := firstNumber(groups)
			if !ok {
				return Intent{}, false
			}
			return Intent{Kind: IntentMarginPct, Value: v}, true
		},
	},
	{
		name:    "fixed amount addition",
		pattern: regexp.MustCompile(`add\s*` + curPat + numPat + multPat + `(?:\s|$)`),
		extract: amountIntent(IntentAddAmount),
	},
	{
		name:    "approximate target",
		pattern: regexp.MustCompile(`(?:around|approximately|approx|about|roughly|~)\s*` + curPat + numPat + multPat),
		extract: amountIntent(IntentApproxTotal),
	},
}

// Vague-language fallbacks with default magnitudes, tried after the rules.
var fallbacks = []struct {
	keywords []string
	intent   Intent
}{
	{[]string{"double"}, Intent{Kind: IntentPctIncrease, Value: decimal.NewFromInt(100)}},
	{[]string{"half", "halve"}, Intent{Kind: IntentPctDecrease, Value: decimal.NewFromInt(50)}},
	{[]string{"higher", "more", "increase", "raise", "up"}, Intent{Kind: IntentPctIncrease, Value: decimal.NewFromInt(10)}},
	{[]string{"lower", "less", "reduce", "decrease", "cheaper", "down"}, Intent{Kind: IntentPctDecrease, Value: decimal.NewFromInt(10)}},
}

// Parse extracts exactly one intent from the instruction; first rule to
// match wins. ok=false means no rule or fallback applied.
func Parse(instruction string) (Intent, string, bool) {
	text := strings.ToLower(strings.TrimSpace(instruction))
	if text == "" {
		return Intent{}, "", false
	}

	for _, rule := range rules {
		groups := rule.pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		if intent, ok := rule.extract(groups); ok {
			return intent, rule.name, true
		}
	}

	for _, fb := range fallbacks {
		for _, kw := range fb.keywords {
			if strings.Contains(text, kw) {
				return fb.intent, "vague-language fallback", true
			}
		}
	}
	return Intent{}, "", false
}

func amountIntent(kind IntentKind) func([]string) (Intent, bool) {
	return func(groups []string) (Intent, bool) {
		num, mult, ok := numberAndMultiplier(groups)
		if !ok {
			return Intent{}, false
		}
		return Intent{Kind: kind, Value: num.Mul(mult)}, true
	}
}

func percentIntent(kind IntentKind) func([]string) (Intent, bool) {
	return func(groups []string) (Intent, bool) {
		v, ok := firstNumber(groups)
		if !ok {
			return Intent{}, false
		}
		return Intent{Kind: kind, Value: v}, true
	}
}

// numberAndMultiplier finds the first numeric group and the multiplier
// word immediately following it, if any.
func numberAndMultiplier(groups []string) (decimal.Decimal, decimal.Decimal, bool) {
	for i := 1; i < len(groups); i++ {
		if groups[i] == "" {
			continue
		}
		num, err := decimal.NewFromString(strings.ReplaceAll(groups[i], ",", ""))
		if err != nil {
			continue
		}
		mult := decimal.NewFromInt(1)
		if i+1 < len(groups) {
			mult = multiplierFor(groups[i+1])
		}
		return num, mult, true
	}
	return decimal.Zero, decimal.Zero, false
}

func firstNumber(groups []string) (decimal.Decimal, bool) {
	for i := 1; i < len(groups); i++ {
		if groups[i] == "" {
			continue
		}
		if v, err := decimal.NewFromString(strings.ReplaceAll(groups[i], ",", "")); err == nil {
			return v, true
		}
	}
	return decimal.Zero, false
}

// multiplierFor resolves unit suffix words named in the instruction text.
func multiplierFor(word string) decimal.Decimal {
	switch strings.TrimSpace(word) {
	case "thousand", "k":
		return decimal.NewFromInt(1_000)
	case "lakh", "lakhs", "lac", "lacs":
		return decimal.NewFromInt(100_000)
	case "million", "mn":
		return decimal.NewFromInt(1_000_000)
	case "crore", "crores", "cr":
		return decimal.NewFromInt(10_000_000)
	}
	return decimal.NewFromInt(1)
}
