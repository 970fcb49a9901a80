package returns

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrEmptyDataset         = errors.New("empty dataset")
	ErrNoOverlappingHistory = errors.New("no overlapping history")
)

// Price is one daily close
type Price struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Series is a dated return series with strictly increasing dates
type Series struct {
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations
func (s Series) Len() int {
	return len(s.Values)
}

// Last returns the final date and value. ok is false for an empty series.
func (s Series) Last() (time.Time, float64, bool) {
	if len(s.Values) == 0 {
		return time.Time{}, 0, false
	}
	n := len(s.Values) - 1
	return s.Dates[n], s.Values[n], true
}

// Day truncates a timestamp to its UTC calendar date, the alignment key
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Clean sorts prices by day, keeps the last quote per day
// and drops non-positive or non-finite closes.
func Clean(prices []Price) []Price {
	out := make([]Price, 0, len(prices))
	for _, p := range prices {
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		out = append(out, Price{Date: Day(p.Date), Close: p.Close})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	dedup := out[:0]
	for _, p := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Date.Equal(p.Date) {
			dedup[n-1] = p
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup
}

// LogReturns computes r_t = ln(p_t / p_{t-1}); the first observation has no return.
func LogReturns(prices []Price) (Series, error) {
	clean := Clean(prices)
	if len(clean) < 2 {
		return Series{}, fmt.Errorf("%w: %d usable prices", ErrEmptyDataset, len(clean))
	}

	s := Series{
		Dates:  make([]time.Time, 0, len(clean)-1),
		Values: make([]float64, 0, len(clean)-1),
	}
	for i := 1; i < len(clean); i++ {
		s.Dates = append(s.Dates, clean[i].Date)
		s.Values = append(s.Values, math.Log(clean[i].Close/clean[i-1].Close))
	}
	return s, nil
}

// Growth reconstructs cumulative price ratios p_t/p_0 from log returns
func Growth(s Series) []float64 {
	out := make([]float64, len(s.Values))
	cum := 0.0
	for i, r := range s.Values {
		cum += r
		out[i] = math.Exp(cum)
	}
	return out
}

// Aligned holds several series restricted to their common dates.
// Columns[i] belongs to the i-th input series.
type Aligned struct {
	Dates   []time.Time
	Columns [][]float64
}

// Column returns the i-th aligned series
func (a Aligned) Column(i int) Series {
	return Series{Dates: a.Dates, Values: a.Columns[i]}
}

// Intersect inner-joins series by date. A date missing from any series is dropped from all.
func Intersect(series ...Series) (Aligned, error) {
	if len(series) == 0 {
		return Aligned{}, fmt.Errorf("%w: no series", ErrNoOverlappingHistory)
	}

	counts := make(map[time.Time]int)
	for _, s := range series {
		for _, d := range s.Dates {
			counts[d]++
		}
	}

	var dates []time.Time
	for _, d := range series[0].Dates {
		if counts[d] == len(series) {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return Aligned{}, ErrNoOverlappingHistory
	}

	keep := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		keep[d] = struct{}{}
	}

	cols := make([][]float64, len(series))
	for i, s := range series {
		col := make([]float64, 0, len(dates))
		for j, d := range s.Dates {
			if _, ok := keep[d]; ok {
				col = append(col, s.Values[j])
			}
		}
		cols[i] = col
	}

	return Aligned{Dates: dates, Columns: cols}, nil
}

// NormalizeWeights rescales weights to sum to 1.
// A zero (or non-finite) total falls back to equal weights.
func NormalizeWeights(raw []float64) []float64 {
	out := make([]float64, len(raw))
	if len(raw) == 0 {
		return out
	}

	total := 0.0
	for _, w := range raw {
		total += w
	}

	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		for i := range out {
			out[i] = 1 / float64(len(raw))
		}
		return out
	}

	for i, w := range raw {
		out[i] = w / total
	}
	return out
}

// Composite returns the per-date weighted sum of aligned returns
func Composite(a Aligned, weights []float64) (Series, error) {
	if len(weights) != len(a.Columns) {
		return Series{}, fmt.Errorf("composite: %d weights for %d series", len(weights), len(a.Columns))
	}

	values := make([]float64, len(a.Dates))
	for i, col := range a.Columns {
		w := weights[i]
		for t, r := range col {
			values[t] += w * r
		}
	}
	return Series{Dates: a.Dates, Values: values}, nil
}
