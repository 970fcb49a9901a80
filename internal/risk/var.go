package risk

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// =============================================================================
// Parametric VaR/ES (정규분포 가정)
// =============================================================================

// ParametricVaRES closed-form normal VaR and Expected Shortfall.
// Losses are positive: VaR = z*sigma - mu, ES = sigma*phi(z)/(1-c) - mu.
func ParametricVaRES(mu, sigma, confidence float64) VaRES {
	z := distuv.UnitNormal.Quantile(confidence)
	phi := distuv.UnitNormal.Prob(z)

	return VaRES{
		VaR: z*sigma - mu,
		ES:  sigma*phi/(1-confidence) - mu,
	}
}

// TailVaRES reads VaR/ES off an ascending P&L sample.
// idx = max(0, floor(n*(1-c)) - 1); VaR = -pnl[idx]; ES = -mean(pnl[0..idx]).
func TailVaRES(sortedPnL []float64, confidence float64) VaRES {
	n := len(sortedPnL)
	if n == 0 {
		return VaRES{}
	}

	idx := max(0, int(float64(n)*(1-confidence))-1)
	if idx >= n {
		idx = n - 1
	}

	var sum float64
	for i := 0; i <= idx; i++ {
		sum += sortedPnL[i]
	}

	return VaRES{
		VaR: -sortedPnL[idx],
		ES:  -sum / float64(idx+1),
	}
}

// =============================================================================
// 통계 유틸리티
// =============================================================================

// Mean 평균 계산
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev sample standard deviation (ddof 1)
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// PopStdDev population standard deviation (ddof 0)
func PopStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Sqrt(stat.PopVariance(values, nil))
}

// Percentile 백분위수 계산 (p in [0,100], linear interpolation between order statistics)
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	// 선형 보간
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// PercentileOf sorts a copy of values and returns its p-th percentile
func PercentileOf(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Percentile(sorted, p)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
