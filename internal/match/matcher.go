// Package match scores structured requirements against catalogue entries
// using the registry's weighted, tolerance-aware comparison rules.
package match

import (
	"math"
	"sort"
	"strings"

	"cable-quote/internal/schema"
	"cable-quote/pkg/api"
	"cable-quote/pkg/confidence"
)

// Matcher ranks catalogue entries for a requirement.
type Matcher struct {
	rules []schema.AttributeRule
}

// New creates a matcher over the registry's attribute rules.
func New(registry *schema.Registry) *Matcher {
	return &Matcher{rules: registry.AttributeRules()}
}

// DefaultTopN is the conventional number of returned matches.
const DefaultTopN = 3

// TopMatches scores every entry and returns the best topN, ranked by score
// with ties broken by exact-match count and then catalogue insertion order.
func (m *Matcher) TopMatches(req api.RequirementSpec, entries []api.CatalogEntry, topN int) []api.MatchResult {
	if topN <= 0 {
		topN = DefaultTopN
	}

	type ranked struct {
		result api.MatchResult
		exact  int
		index  int
	}

	results := make([]ranked, 0, len(entries))
	for i, entry := range entries {
		result := m.Score(req, entry)
		results = append(results, ranked{result: result, exact: len(result.MatchedAttributes), index: i})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].result.Score != results[j].result.Score {
			return results[i].result.Score > results[j].result.Score
		}
		if results[i].exact != results[j].exact {
			return results[i].exact > results[j].exact
		}
		return results[i].index < results[j].index
	})

	if len(results) > topN {
		results = results[:topN]
	}
	out := make([]api.MatchResult, len(results))
	for i, r := range results {
		out[i] = r.result
	}
	return out
}

// Score compares one entry against the requirement. Attributes absent from
// the requirement are skipped entirely: they contribute to neither the
// earned nor the applicable weight, so an under-specified requirement is
// never penalized for information the buyer did not provide.
func (m *Matcher) Score(req api.RequirementSpec, entry api.CatalogEntry) api.MatchResult {
	reqAttrs := req.Attributes()
	entryAttrs := entry.Attributes()

	result := api.MatchResult{SKU: entry.SKU, Entry: entry}

	var credits, weights []float64
	for _, rule := range m.rules {
		want, ok := reqAttrs[rule.Name]
		if !ok {
			continue
		}

		have, ok := entryAttrs[rule.Name]
		if !ok {
			result.UnmatchedAttributes = append(result.UnmatchedAttributes, rule.Name)
			credits = append(credits, 0)
			weights = append(weights, rule.Weight)
			continue
		}

		credit := compare(rule, want, have)
		credits = append(credits, credit)
		weights = append(weights, rule.Weight)
		switch {
		case credit == 1:
			result.MatchedAttributes = append(result.MatchedAttributes, rule.Name)
		case credit > 0:
			result.PartialAttributes = append(result.PartialAttributes, rule.Name)
		default:
			result.UnmatchedAttributes = append(result.UnmatchedAttributes, rule.Name)
		}
	}

	if len(credits) > 0 {
		result.Score = int(math.Round(100 * confidence.WeightedAverage(credits, weights)))
	}
	return result
}

// compare returns the credit fraction for one attribute under its rule.
func compare(rule schema.AttributeRule, want, have api.AttrValue) float64 {
	switch rule.Kind {
	case api.KindNumeric:
		return compareNumeric(rule, want.Num, have.Num)
	case api.KindText:
		if strings.EqualFold(strings.TrimSpace(want.Text), strings.TrimSpace(have.Text)) {
			return 1
		}
		return 0
	case api.KindBoolean:
		if want.Bool == have.Bool {
			return 1
		}
		return 0
	}
	return 0
}

// compareNumeric applies the rule's tolerance bands: exact earns full
// credit, a deviation within Band1 earns Band1Credit, within Band2 earns
// Band2Credit, outside both earns nothing.
func compareNumeric(rule schema.AttributeRule, want, have float64) float64 {
	if want == have {
		return 1
	}
	if want == 0 {
		return 0
	}

	deviation := math.Abs(have-want) / math.Abs(want)
	if rule.Band1 > 0 && deviation <= rule.Band1 {
		return rule.Band1Credit
	}
	if rule.Band2 > 0 && deviation <= rule.Band2 {
		return rule.Band2Credit
	}
	return 0
}
