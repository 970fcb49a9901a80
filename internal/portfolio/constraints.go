package portfolio

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidRequest = errors.New("invalid portfolio request")
	ErrNoValidAssets  = errors.New("no valid assets")
)

// Constraints bound what a single request may ask for
// ⭐ SSOT: 요청 제약조건은 여기서만
type Constraints struct {
	MaxHoldings int     // 요청당 최대 종목 수
	MaxValue    float64 // 포트폴리오 최대 금액
}

// DefaultConstraints returns default constraint configuration
func DefaultConstraints() Constraints {
	return Constraints{
		MaxHoldings: 50,
		MaxValue:    1e12,
	}
}

// Check validates parallel ticker/weight slices and a notional value
func (c Constraints) Check(tickers []string, weights []float64, value float64) error {
	if len(tickers) == 0 {
		return fmt.Errorf("%w: no tickers", ErrInvalidRequest)
	}
	if len(tickers) != len(weights) {
		return fmt.Errorf("%w: %d tickers but %d weights", ErrInvalidRequest, len(tickers), len(weights))
	}
	if c.MaxHoldings > 0 && len(tickers) > c.MaxHoldings {
		return fmt.Errorf("%w: %d holdings exceeds limit %d", ErrInvalidRequest, len(tickers), c.MaxHoldings)
	}
	if !(value > 0) || math.IsInf(value, 0) || (c.MaxValue > 0 && value > c.MaxValue) {
		return fmt.Errorf("%w: portfolio value %v", ErrInvalidRequest, value)
	}

	seen := make(map[string]struct{}, len(tickers))
	for i, t := range tickers {
		if t == "" {
			return fmt.Errorf("%w: empty ticker at %d", ErrInvalidRequest, i)
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("%w: duplicate ticker %s", ErrInvalidRequest, t)
		}
		seen[t] = struct{}{}

		if math.IsNaN(weights[i]) || math.IsInf(weights[i], 0) {
			return fmt.Errorf("%w: weight for %s is not finite", ErrInvalidRequest, t)
		}
	}
	return nil
}
