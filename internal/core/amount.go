// Package core holds the money rules shared by the split allocator and the
// settlement calculator: the fixed tolerance and the typed errors both report.
package core

import "math"

// Tolerance is the absolute amount, in currency units, below which two
// amounts are treated as equal. It does not scale with the bill size.
const Tolerance = 0.01

// Abs returns the absolute value of an amount.
func Abs(v float64) float64 {
	return math.Abs(v)
}

// WithinTolerance reports whether a and b differ by at most Tolerance.
func WithinTolerance(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}

// RoundToTwoDecimals rounds a float to 2 decimal places.
func RoundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
