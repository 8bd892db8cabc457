// Package money provides decimal helpers and currency display formatting.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds to two decimal places, the precision of every intermediate
// total in a quotation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatINR renders a decimal with Indian digit grouping and a two-decimal
// fraction, e.g. 12345678.5 -> "1,23,45,678.50".
func FormatINR(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	grouped := groupIndian(intPart)
	if neg {
		grouped = "-" + grouped
	}
	return grouped + "." + fracPart
}

// groupIndian inserts commas after the last three digits and then every
// two digits: 1234567 -> 12,34,567.
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	head := digits[:n-3]
	tail := digits[n-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	groups = append(groups, tail)
	return strings.Join(groups, ",")
}
