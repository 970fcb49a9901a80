package simulation

import (
	"context"
	"math"
	"math/rand"

	"github.com/wonny/riskscope/internal/risk"
)

// 회복 기간 추정
const (
	RecoveryYears     = 3
	RecoveryCapMonths = 36.0
	RecoverySigma     = 0.15
	TradingDaysMonth  = 21

	// recoveryStream keeps the recovery draws apart from the path blocks
	recoveryStream = math.MaxInt32
)

// Regime classifies drawdown severity
type Regime string

const (
	RegimeCrisis     Regime = "crisis"
	RegimeRecession  Regime = "recession"
	RegimeCorrection Regime = "correction"
)

// ClassifyRegime maps a drawdown depth to its regime and reversion speed
func ClassifyRegime(depth float64) (Regime, float64) {
	switch {
	case depth > 0.35:
		return RegimeCrisis, 0.10
	case depth > 0.20:
		return RegimeRecession, 0.18
	default:
		return RegimeCorrection, 0.30
	}
}

// Recovery is the outcome of the recovery estimate
type Recovery struct {
	Regime    Regime
	Theta     float64
	Depth     float64 // 75th percentile drawdown depth
	Trough    float64 // median trough value
	Recovered int     // trajectories that reached the initial value
	Months    float64
	Capped    bool
}

// RecoveryTime estimates months to regain the initial value after a drawdown.
//
// One trajectory per path starts at the median trough and follows
// dP = theta*(initial - P)dt + sigma*P*dW until it first reaches initial.
// The 60th percentile of first-hit days is reported in months, capped at 36.
func RecoveryTime(ctx context.Context, ps *PathSet, seed uint64) (Recovery, error) {
	depths := make([]float64, ps.Paths)
	troughs := make([]float64, ps.Paths)
	for i := range depths {
		depths[i], troughs[i] = PathDrawdown(ps.Path(i))
	}

	rec := Recovery{
		Depth:  risk.PercentileOf(depths, 75),
		Trough: risk.PercentileOf(troughs, 50),
	}
	rec.Regime, rec.Theta = ClassifyRegime(rec.Depth)

	if rec.Trough >= ps.Initial {
		return rec, nil
	}

	days := RecoveryYears * TradingDays
	dt := 1.0 / TradingDays
	sqrtDt := math.Sqrt(dt)
	rng := rand.New(rand.NewSource(blockSeed(seed, recoveryStream)))

	prices := make([]float64, ps.Paths)
	for i := range prices {
		prices[i] = rec.Trough
	}
	var hits []float64

	for t := 1; t < days && len(prices) > 0; t++ {
		if t%64 == 0 {
			if err := ctx.Err(); err != nil {
				return Recovery{}, err
			}
		}

		alive := prices[:0]
		for _, p := range prices {
			p += rec.Theta*(ps.Initial-p)*dt + RecoverySigma*p*rng.NormFloat64()*sqrtDt
			if p >= ps.Initial {
				hits = append(hits, float64(t))
				continue
			}
			alive = append(alive, p)
		}
		prices = alive
	}

	rec.Recovered = len(hits)
	if len(hits) == 0 {
		rec.Months = RecoveryCapMonths
		rec.Capped = true
		return rec, nil
	}

	months := risk.PercentileOf(hits, 60) / TradingDaysMonth
	if months >= RecoveryCapMonths {
		rec.Months = RecoveryCapMonths
		rec.Capped = true
		return rec, nil
	}
	rec.Months = months
	return rec, nil
}
