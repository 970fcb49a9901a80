package portfolio

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/internal/risk"
)

// HistogramBins is the fixed bin count of the return histogram
const HistogramBins = 40

const dateLayout = "2006-01-02"

// Analytics computes best/worst day, cumulative return and drawdown curves,
// and the return histogram of a series
func Analytics(s returns.Series) contracts.ReturnAnalytics {
	out := contracts.ReturnAnalytics{
		CumulativeReturns: []contracts.DatedValue{},
		DrawdownSeries:    []contracts.DrawdownPoint{},
		ReturnHistogram:   []contracts.HistogramBin{},
	}
	if s.Len() == 0 {
		out.BestDay = contracts.Float(math.NaN())
		out.WorstDay = contracts.Float(math.NaN())
		return out
	}

	out.BestDay = contracts.Float(floats.Max(s.Values))
	out.WorstDay = contracts.Float(floats.Min(s.Values))

	wealth := risk.WealthIndex(s.Values)
	drawdowns := risk.Drawdowns(wealth)

	out.CumulativeReturns = make([]contracts.DatedValue, s.Len())
	out.DrawdownSeries = make([]contracts.DrawdownPoint, s.Len())
	for i, d := range s.Dates {
		date := d.Format(dateLayout)
		out.CumulativeReturns[i] = contracts.DatedValue{Date: date, Value: contracts.Float(wealth[i] - 1)}
		out.DrawdownSeries[i] = contracts.DrawdownPoint{Date: date, Drawdown: contracts.Float(drawdowns[i])}
	}

	out.ReturnHistogram = Histogram(s.Values, HistogramBins)
	return out
}

// Histogram buckets values into n equal-width bins between min and max.
// The last bin is closed. A constant series uses the range [v-0.5, v+0.5].
func Histogram(values []float64, n int) []contracts.HistogramBin {
	if len(values) == 0 || n <= 0 {
		return []contracts.HistogramBin{}
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(n)

	counts := make([]int, n)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		counts[i]++
	}

	bins := make([]contracts.HistogramBin, n)
	for i := range bins {
		edge := lo + float64(i)*width
		bins[i] = contracts.HistogramBin{Bin: fmt.Sprintf("%.2f%%", edge*100), Count: counts[i]}
	}
	return bins
}

// TodayChange values the latest single-day return of s against the portfolio.
// Fewer than two observations report no change.
func TodayChange(s returns.Series, value, cashFlow float64) contracts.TodayChange {
	if s.Len() < 2 {
		return contracts.TodayChange{}
	}
	last := s.Values[s.Len()-1]
	return contracts.TodayChange{
		ChangeAbs: contracts.Float(contracts.Round(value*last-cashFlow, 2)),
		ChangePct: contracts.Float(contracts.Round(last*100, 2)),
	}
}
