// Package format converts currency and percentage values between their
// canonical text form and decimals, and buckets upstream extraction
// confidence scores for display.
package format

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Currency renders a decimal as US currency text, e.g. "$1,234.56".
// Negative amounts render with a leading minus: "-$1,234.56". The text
// is built from the decimal's own digits so amounts of any magnitude
// render exactly.
func Currency(d decimal.Decimal) string {
	rounded := d.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	intPart, fracPart, _ := strings.Cut(rounded.StringFixed(2), ".")
	return sign + "$" + groupThousands(intPart) + "." + fracPart
}

// groupThousands inserts comma separators into a plain digit string.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseCurrency parses currency text into a decimal. Dollar signs,
// commas, and surrounding whitespace are tolerated; accounting-style
// parentheses mean negative. Empty text parses as zero.
func ParseCurrency(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, eris.Wrapf(err, "format: parse currency %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Percent renders a percentage decimal to four places, e.g. "18.7500%".
func Percent(d decimal.Decimal) string {
	return d.Round(4).StringFixed(4) + "%"
}

// ParsePercent parses percentage text such as "18.75%" or "18.75".
// Empty text parses as zero.
func ParsePercent(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, eris.Wrapf(err, "format: parse percent %q", s)
	}
	return d, nil
}

// ConfidenceBucket classifies an upstream extraction confidence score.
type ConfidenceBucket string

// Confidence buckets.
const (
	ConfidenceHigh   ConfidenceBucket = "HIGH"
	ConfidenceMedium ConfidenceBucket = "MEDIUM"
	ConfidenceLow    ConfidenceBucket = "LOW"
)

// Bucket thresholds. Scores at or above the threshold land in the
// bucket.
const (
	highConfidenceThreshold   = 0.85
	mediumConfidenceThreshold = 0.60
)

// Confidence buckets a 0.0-1.0 extraction score. Out-of-range scores
// are clamped rather than rejected; upstream extractors occasionally
// report 1.01 style artifacts.
func Confidence(score float64) ConfidenceBucket {
	switch {
	case score >= highConfidenceThreshold:
		return ConfidenceHigh
	case score >= mediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
