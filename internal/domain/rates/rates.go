// Package rates holds the numeric primitives every quantity and percentage in the
// tracker goes through. Values are truncated toward zero, never rounded.
package rates

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// QtyPrecision is the number of decimals kept for stored quantities.
	QtyPrecision int32 = 3
	// RatePrecision is the number of decimals kept for percentages.
	RatePrecision int32 = 2
)

var hundred = decimal.NewFromInt(100)

// Truncate drops digits past precision without rounding. Non-finite input yields 0 and
// integral input is returned untouched.
func Truncate(v float64, precision int32) float64 {
	if !finite(v) {
		return 0
	}
	if v == math.Trunc(v) {
		return v
	}
	// decimal keeps the shortest decimal form of v, so 0.29 stays 0.29 instead of 0.28999...
	return decimal.NewFromFloat(v).Truncate(precision).InexactFloat64()
}

// Qty truncates v to QtyPrecision.
func Qty(v float64) float64 { return Truncate(v, QtyPrecision) }

// RejectionRate returns rejected/total as a percentage truncated to RatePrecision.
// A zero or non-finite total gives 0.
func RejectionRate(rejected, total float64) float64 {
	if total == 0 || !finite(total) || !finite(rejected) {
		return 0
	}
	pct := decimal.NewFromFloat(rejected).
		Div(decimal.NewFromFloat(total)).
		Mul(hundred)
	return pct.Truncate(RatePrecision).InexactFloat64()
}

// Remaining is the part of master not yet covered by delivered, floored at 0.
func Remaining(master, delivered float64) float64 {
	return Qty(math.Max(0, master-delivered))
}

// Sanitize coerces NaN, infinities and negatives to 0.
func Sanitize(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}

// Finite coerces NaN and infinities to 0 and keeps the sign of everything else.
func Finite(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return v
}

// ParseQty reads a user or sheet supplied number. Anything unparsable is 0.
func ParseQty(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Sanitize(v)
}

// Format renders a quantity with at most QtyPrecision decimals and no trailing zeros.
func Format(v float64) string {
	return strconv.FormatFloat(Qty(v), 'f', -1, 64)
}

// FormatPercent renders a rate with at most RatePrecision decimals followed by "%".
func FormatPercent(v float64) string {
	return strconv.FormatFloat(Truncate(v, RatePrecision), 'f', -1, 64) + "%"
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
