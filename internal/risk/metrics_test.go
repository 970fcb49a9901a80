package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/riskscope/internal/returns"
)

func dates(n int) []time.Time {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name string
		rets []float64
		want float64
	}{
		{"monotone gain", []float64{0.01, 0.02, 0.03}, 0},
		{"single crash", []float64{0.1, -0.5, 0.2}, 0.5},
		{"total loss", []float64{0.2, -1}, 1},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.rets)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestDrawdowns(t *testing.T) {
	got := Drawdowns([]float64{100, 120, 90, 130})
	assert.InDeltaSlice(t, []float64{0, 0, -0.25, 0}, got, 1e-12)
}

func TestSharpe(t *testing.T) {
	assert.Equal(t, 0.0, Sharpe([]float64{0.01, 0.01, 0.01}, 0))
	assert.Equal(t, 0.0, Sharpe([]float64{0.01}, 0))

	rets := []float64{0.01, 0.03}
	// mean 0.02, sample std sqrt(0.0002)
	want := 0.02 / math.Sqrt(0.0002) * math.Sqrt(252)
	assert.InDelta(t, want, Sharpe(rets, 0), 1e-9)
	assert.InDelta(t, 0.0, Sharpe(rets, 0.02), 1e-9)
}

func TestAnnualizedVolatility(t *testing.T) {
	assert.InDelta(t, 0.01*math.Sqrt(252), AnnualizedVolatility([]float64{0.01, -0.01}), 1e-12)
}

func TestBetaToMarket(t *testing.T) {
	d := dates(6)
	market := returns.Series{Dates: d, Values: []float64{0.01, -0.02, 0.015, 0.005, -0.01, 0.02}}

	doubled := returns.Series{Dates: d, Values: make([]float64, 6)}
	for i, m := range market.Values {
		doubled.Values[i] = 2 * m
	}
	assert.InDelta(t, 2.0, BetaToMarket(doubled, market), 1e-9)

	// only the overlapping dates count
	partial := returns.Series{Dates: d[2:], Values: doubled.Values[2:]}
	assert.InDelta(t, 2.0, BetaToMarket(partial, market), 1e-9)

	flat := returns.Series{Dates: d, Values: []float64{0.01, 0.01, 0.01, 0.01, 0.01, 0.01}}
	assert.Equal(t, 0.0, BetaToMarket(doubled, flat))

	disjoint := returns.Series{}
	assert.Equal(t, 0.0, BetaToMarket(doubled, disjoint))
}
