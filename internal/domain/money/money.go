// Package money provides locale-tolerant amount parsing and formatting.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts human-formatted amount text into a decimal. It tolerates
// currency symbols, surrounding whitespace and thousands separators in both
// "1,234.56" and "1.234,56" styles. Malformed text is an error; callers
// that treat it as a no-match decide that themselves.
func Parse(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimPrefix(cleaned, "€")
	cleaned = strings.TrimPrefix(cleaned, "£")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	// A trailing separator is sentence punctuation, not part of the
	// number; left in place it would skew the grouping heuristic below.
	cleaned = strings.TrimRight(cleaned, ".,")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the later one is the decimal separator
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		// Only commas: a single comma followed by exactly two digits is a
		// decimal separator, anything else is thousands grouping
		if strings.Count(cleaned, ",") == 1 && len(cleaned)-lastComma-1 == 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastDot >= 0:
		// Only dots: more than one means thousands grouping
		if strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparsable amount %q: %w", s, err)
	}
	return d, nil
}

// Format renders an amount with two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
