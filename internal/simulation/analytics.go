package simulation

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/riskscope/internal/risk"
)

// =============================================================================
// Path analytics
// =============================================================================

// ExpectedLoss initial - mean(final). Negative means an expected gain.
func ExpectedLoss(ps *PathSet) float64 {
	return ps.Initial - stat.Mean(ps.Finals(), nil)
}

// PathDrawdown returns the deepest drawdown of a path as a magnitude and
// the value at which it occurred
func PathDrawdown(path []float64) (depth, trough float64) {
	if len(path) == 0 {
		return 0, 0
	}
	peak := path[0]
	worst := 0.0
	trough = path[0]
	for _, v := range path {
		if v > peak {
			peak = v
		}
		if dd := (v - peak) / peak; dd < worst {
			worst = dd
			trough = v
		}
	}
	return -worst, trough
}

// MaxDrawdown median across paths of each path's deepest drawdown, as a magnitude
func MaxDrawdown(ps *PathSet) float64 {
	depths := make([]float64, ps.Paths)
	for i := range depths {
		depths[i], _ = PathDrawdown(ps.Path(i))
	}
	return risk.PercentileOf(depths, 50)
}

// ValueAtRisk alpha-quantile of total path returns (final - initial)/initial.
// A loss is negative.
func ValueAtRisk(ps *PathSet, alpha float64) float64 {
	rets := make([]float64, ps.Paths)
	for i := range rets {
		rets[i] = (ps.Final(i) - ps.Initial) / ps.Initial
	}
	return risk.PercentileOf(rets, alpha*100)
}

// Summary per-day percentile bands across paths
type Summary struct {
	Median []float64
	P10    []float64
	P90    []float64
}

// Truncate keeps the first n days
func (s Summary) Truncate(n int) Summary {
	n = min(n, len(s.Median))
	return Summary{Median: s.Median[:n], P10: s.P10[:n], P90: s.P90[:n]}
}

// PathSummary computes the median, 10th and 90th percentile for every day
func PathSummary(ps *PathSet) Summary {
	out := Summary{
		Median: make([]float64, ps.Days),
		P10:    make([]float64, ps.Days),
		P90:    make([]float64, ps.Days),
	}

	col := make([]float64, ps.Paths)
	for d := 0; d < ps.Days; d++ {
		for i := range col {
			col[i] = ps.Values[i*ps.Days+d]
		}
		sort.Float64s(col)
		out.Median[d] = risk.Percentile(col, 50)
		out.P10[d] = risk.Percentile(col, 10)
		out.P90[d] = risk.Percentile(col, 90)
	}
	return out
}
