package util

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumericCell extracts a numeric value from a raw table cell.
// Tolerates unit suffixes and grouping commas:
// "11kV" -> 11, "240 sqmm" -> 240, "1,250.50" -> 1250.5.
func ParseNumericCell(cell string) (float64, bool) {
	s := strings.TrimSpace(strings.ToLower(cell))
	if s == "" {
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", "")
	for _, suffix := range []string{"kv", "sqmm", "sq.mm", "sq mm", "mm2", "mm²", "core", "cores", "°c", "c"} {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.TrimSpace(s)

	// Keep leading numeric run only ("11/11kv" style cells)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || s[end] == '-') {
		end++
	}
	if end == 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePriceCell extracts a currency amount from a raw table cell.
// Strips currency markers: "₹ 1,250.00", "Rs. 1250", "INR 1250".
func ParsePriceCell(cell string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.ToLower(cell))
	for _, marker := range []string{"₹", "rs.", "rs", "inr"} {
		s = strings.TrimPrefix(s, marker)
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseBoolCell interprets yes/no style cells ("armoured", "unarmoured",
// "yes", "no", "true", "false").
func ParseBoolCell(cell string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(cell)) {
	case "yes", "y", "true", "1", "armoured", "armored":
		return true, true
	case "no", "n", "false", "0", "unarmoured", "unarmored":
		return false, true
	}
	return false, false
}
