package contracts

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds half away from zero to the given decimal places.
// Non-finite values pass through unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
