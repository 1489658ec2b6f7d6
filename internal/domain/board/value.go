package board

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseQuantity coerces an item value to a number. The number variant wins
// over text; a leading numeric prefix is accepted ("7 units" is 7) and
// anything absent or unparseable counts as zero.
func ParseQuantity(v ItemValue) float64 {
	return parseLeadingFloat(v.Number, v.Text)
}

func parseLeadingFloat(candidates ...string) float64 {
	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		match := leadingNumber.FindString(raw)
		if match == "" {
			return 0
		}
		f, err := strconv.ParseFloat(match, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0
		}
		return f
	}
	return 0
}

// FormatQuantity renders a total for writeback without exponent notation.
func FormatQuantity(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0"
	}
	return decimal.NewFromFloat(f).String()
}
