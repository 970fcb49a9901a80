package returns

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func prices(closes ...float64) []Price {
	out := make([]Price, len(closes))
	for i, c := range closes {
		out[i] = Price{Date: day(i), Close: c}
	}
	return out
}

func TestLogReturns(t *testing.T) {
	s, err := LogReturns(prices(100, 110, 99))
	require.NoError(t, err)

	require.Equal(t, 2, s.Len())
	assert.Equal(t, []time.Time{day(1), day(2)}, s.Dates)
	assert.InDelta(t, math.Log(1.1), s.Values[0], 1e-12)
	assert.InDelta(t, math.Log(0.9), s.Values[1], 1e-12)
}

func TestLogReturnsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		prices []Price
	}{
		{"nil", nil},
		{"single price", prices(100)},
		{"only invalid closes", prices(0, -1, math.NaN())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LogReturns(tt.prices)
			assert.ErrorIs(t, err, ErrEmptyDataset)
		})
	}
}

func TestCleanSortsAndDedupes(t *testing.T) {
	in := []Price{
		{Date: day(2).Add(15 * time.Hour), Close: 12},
		{Date: day(0), Close: 10},
		{Date: day(2), Close: 13},
		{Date: day(1), Close: 0},
	}

	out := Clean(in)
	require.Len(t, out, 2)
	assert.Equal(t, day(0), out[0].Date)
	assert.Equal(t, day(2), out[1].Date)
	assert.Equal(t, 13.0, out[1].Close)
}

func TestGrowthRoundTrip(t *testing.T) {
	closes := []float64{50, 52.5, 51, 55, 40, 60.25}
	s, err := LogReturns(prices(closes...))
	require.NoError(t, err)

	growth := Growth(s)
	for i, g := range growth {
		assert.InDelta(t, closes[i+1]/closes[0], g, 1e-12)
	}
}

func TestIntersect(t *testing.T) {
	a := Series{Dates: []time.Time{day(1), day(2), day(3)}, Values: []float64{0.1, 0.2, 0.3}}
	b := Series{Dates: []time.Time{day(2), day(3), day(4)}, Values: []float64{-0.2, -0.3, -0.4}}

	aligned, err := Intersect(a, b)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(2), day(3)}, aligned.Dates)
	assert.Equal(t, []float64{0.2, 0.3}, aligned.Columns[0])
	assert.Equal(t, []float64{-0.2, -0.3}, aligned.Columns[1])
	assert.Equal(t, []float64{-0.2, -0.3}, aligned.Column(1).Values)
}

func TestIntersectDisjoint(t *testing.T) {
	a := Series{Dates: []time.Time{day(1)}, Values: []float64{0.1}}
	b := Series{Dates: []time.Time{day(2)}, Values: []float64{0.2}}

	_, err := Intersect(a, b)
	assert.ErrorIs(t, err, ErrNoOverlappingHistory)

	_, err = Intersect()
	assert.ErrorIs(t, err, ErrNoOverlappingHistory)
}

func TestNormalizeWeights(t *testing.T) {
	tests := []struct {
		name string
		raw  []float64
		want []float64
	}{
		{"already normalized", []float64{0.5, 0.5}, []float64{0.5, 0.5}},
		{"scaled", []float64{2, 6}, []float64{0.25, 0.75}},
		{"all zero", []float64{0, 0, 0, 0}, []float64{0.25, 0.25, 0.25, 0.25}},
		{"cancelling", []float64{1, -1}, []float64{0.5, 0.5}},
		{"empty", nil, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeWeights(tt.raw)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestNormalizeWeightsSumToOne(t *testing.T) {
	inputs := [][]float64{
		{0.3, 0.3, 0.3},
		{1e-6, 3e-6},
		{7, 1, 13, 0.25},
		{-0.5, 2},
	}
	for _, raw := range inputs {
		sum := 0.0
		for _, w := range NormalizeWeights(raw) {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestComposite(t *testing.T) {
	aligned := Aligned{
		Dates:   []time.Time{day(1), day(2)},
		Columns: [][]float64{{0.1, 0.2}, {-0.1, 0.4}},
	}

	s, err := Composite(aligned, []float64{0.25, 0.75})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.05, 0.35}, s.Values, 1e-12)

	_, err = Composite(aligned, []float64{1})
	assert.Error(t, err)
}

func TestSeriesLast(t *testing.T) {
	_, _, ok := Series{}.Last()
	assert.False(t, ok)

	d, v, ok := Series{Dates: []time.Time{day(1), day(2)}, Values: []float64{1, 2}}.Last()
	assert.True(t, ok)
	assert.Equal(t, day(2), d)
	assert.Equal(t, 2.0, v)
}
