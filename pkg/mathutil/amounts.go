// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/cortlandlabs/variance-explainer/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// ValueOrZero dereferences an optional amount, treating absent as zero.
func ValueOrZero(val *float64) float64 {
	if val == nil {
		return 0
	}
	return *val
}

// AbsOrZero returns the absolute value of an optional amount, treating
// absent as zero. Threshold comparisons use this so that an uncoercible
// variance can never satisfy a materiality gate.
func AbsOrZero(val *float64) float64 {
	if val == nil {
		return 0
	}
	return math.Abs(*val)
}

// Ptr returns a pointer to the given amount. Intended for building optional
// fields from literals, primarily in tests.
func Ptr(val float64) *float64 {
	return &val
}
