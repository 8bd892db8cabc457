// Package confidence provides confidence score math utilities.
package confidence

import "math"

// Aggregate combines multiple confidence scores.
// Uses geometric mean to penalize low-confidence components.
func Aggregate(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	product := 1.0
	for _, s := range scores {
		if s <= 0 {
			return 0
		}
		product *= s
	}

	return math.Pow(product, 1.0/float64(len(scores)))
}

// Average is the arithmetic mean, used for per-field mapping confidence.
func Average(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// WeightedAverage calculates weighted confidence.
func WeightedAverage(scores []float64, weights []float64) float64 {
	if len(scores) == 0 || len(scores) != len(weights) {
		return 0
	}

	var sum, weightSum float64
	for i, s := range scores {
		sum += s * weights[i]
		weightSum += weights[i]
	}

	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// AboveThreshold checks if confidence meets minimum requirement.
func AboveThreshold(score, threshold float64) bool {
	return score >= threshold
}

// Clamp ensures confidence is in valid range [0, 1].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Confidence floors used across classification and mapping.
const (
	IntentConfidence    = 0.95 // explicit user hint
	FilenameConfidence  = 0.90 // filename keyword match
	KeywordConfidence   = 0.60 // lexical fallback floor
	MappingThreshold    = 0.50 // minimum accepted column mapping
	SubstringFloor      = 0.85 // substring header/field relationship
	SimilarityThreshold = 0.55 // minimum accepted embedding classification
)
