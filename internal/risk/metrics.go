package risk

import (
	"math"

	"github.com/wonny/riskscope/internal/returns"
	"gonum.org/v1/gonum/stat"
)

// Sharpe annualized (mean/std of excess returns) * sqrt(252), sample std.
// riskFree is a per-period rate. Zero dispersion yields 0.
func Sharpe(rets []float64, riskFree float64) float64 {
	if len(rets) < 2 {
		return 0
	}
	excess := make([]float64, len(rets))
	for i, r := range rets {
		excess[i] = r - riskFree
	}
	mean, sd := stat.MeanStdDev(excess, nil)
	if sd == 0 || !finite(sd) {
		return 0
	}
	return mean / sd * math.Sqrt(TradingDays)
}

// WealthIndex compounds returns into cumprod(1 + r)
func WealthIndex(rets []float64) []float64 {
	out := make([]float64, len(rets))
	w := 1.0
	for i, r := range rets {
		w *= 1 + r
		out[i] = w
	}
	return out
}

// Drawdowns returns (w - peak)/peak for each point of a value path, all <= 0
func Drawdowns(values []float64) []float64 {
	out := make([]float64, len(values))
	peak := math.Inf(-1)
	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			out[i] = (v - peak) / peak
		}
	}
	return out
}

// MaxDrawdown largest peak-to-trough decline of the wealth index, as a positive fraction
func MaxDrawdown(rets []float64) float64 {
	worst := 0.0
	for _, dd := range Drawdowns(WealthIndex(rets)) {
		if dd < worst {
			worst = dd
		}
	}
	return math.Abs(worst)
}

// AnnualizedVolatility population std * sqrt(252)
func AnnualizedVolatility(rets []float64) float64 {
	return PopStdDev(rets) * math.Sqrt(TradingDays)
}

// BetaToMarket cov(r, m)/var(m) over the date-aligned overlap.
// No overlap or zero market variance yields 0.
func BetaToMarket(series, market returns.Series) float64 {
	aligned, err := returns.Intersect(series, market)
	if err != nil || len(aligned.Dates) < 2 {
		return 0
	}
	r, m := aligned.Columns[0], aligned.Columns[1]

	v := stat.Variance(m, nil)
	if v == 0 || !finite(v) {
		return 0
	}
	return stat.Covariance(r, m, nil) / v
}
