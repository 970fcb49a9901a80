package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/internal/risk"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/metrics"
)

var errNoData = errors.New("no data")

// mapSource serves fixed price histories
type mapSource map[string][]returns.Price

func (m mapSource) History(ctx context.Context, assetID string) ([]returns.Price, error) {
	prices, ok := m[assetID]
	if !ok {
		return nil, errNoData
	}
	return prices, nil
}

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func pricesFrom(start int, closes ...float64) []returns.Price {
	out := make([]returns.Price, len(closes))
	for i, c := range closes {
		out[i] = returns.Price{Date: day(start + i), Close: c}
	}
	return out
}

func randomWalk(n int, seed int64) []returns.Price {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	p := 100.0
	for i := range closes {
		p *= math.Exp(0.0003 + 0.012*rng.NormFloat64())
		closes[i] = p
	}
	return pricesFrom(0, closes...)
}

func stubEstimator() Estimator {
	engine := risk.EngineFunc(func(ctx context.Context, mu, sigma float64) (risk.VaRES, error) {
		return risk.ParametricVaRES(mu, sigma, 0.99), nil
	})
	return risk.NewEstimator(engine, logger.Nop())
}

func newAggregator(src PriceSource, est Estimator) *Aggregator {
	return NewAggregator(DefaultConfig(), src, est, logger.Nop())
}

func TestComputeRiskDateIntersection(t *testing.T) {
	src := mapSource{
		"A": pricesFrom(0, 100, 101, 102, 103),
		"B": pricesFrom(1, 50, 51, 52, 53),
	}

	report, err := newAggregator(src, stubEstimator()).ComputeRisk(context.Background(), Request{
		Tickers:        []string{"A", "B"},
		Weights:        []float64{1, 1},
		PortfolioValue: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, day(3).Format(dateLayout), report.AsOf)
	require.Len(t, report.PortfolioAnalytics.CumulativeReturns, 2)
	assert.Equal(t, day(2).Format(dateLayout), report.PortfolioAnalytics.CumulativeReturns[0].Date)
	assert.Len(t, report.AssetsAnalytics["A"].CumulativeReturns, 2)

	// two observations cannot support a volatility model
	assert.Equal(t, string(risk.ReasonInsufficientHistory), report.Portfolio.Error)
	assert.Equal(t, string(risk.ReasonInsufficientHistory), report.Assets["B"].Error)
}

func TestComputeRiskSkipsAndRenormalizes(t *testing.T) {
	src := mapSource{
		"AAPL": randomWalk(300, 1),
		"GOOG": randomWalk(300, 2),
		"SPY":  randomWalk(300, 3),
	}

	report, err := newAggregator(src, stubEstimator()).ComputeRisk(context.Background(), Request{
		Tickers:        []string{"AAPL", "MISSING", "GOOG"},
		Weights:        []float64{0.3, 0.4, 0.3},
		PortfolioValue: 1_000_000,
	})
	require.NoError(t, err)

	assert.Contains(t, report.Skipped, "MISSING")
	assert.NotContains(t, report.Assets, "MISSING")
	require.Len(t, report.ResolvedWeights, 2)

	sum := 0.0
	for _, w := range report.ResolvedWeights {
		sum += float64(w)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 0.5, float64(report.ResolvedWeights["AAPL"]), 1e-9)

	assert.Empty(t, report.Portfolio.Error)
	assert.Greater(t, float64(report.Portfolio.VaR), 0.0)
	require.NotNil(t, report.Portfolio.Volatility)
	require.NotNil(t, report.Portfolio.Beta)
	assert.Len(t, report.PortfolioAnalytics.ReturnHistogram, HistogramBins)
	assert.NotEmpty(t, report.RunID)
}

func TestComputeRiskZeroWeightsFallBackToEqual(t *testing.T) {
	src := mapSource{
		"A": randomWalk(10, 1),
		"B": randomWalk(10, 2),
		"C": randomWalk(10, 3),
	}

	report, err := newAggregator(src, stubEstimator()).ComputeRisk(context.Background(), Request{
		Tickers:        []string{"A", "B", "C"},
		Weights:        []float64{0, 0, 0},
		PortfolioValue: 100,
	})
	require.NoError(t, err)

	for _, w := range report.ResolvedWeights {
		assert.InDelta(t, 1.0/3, float64(w), 1e-12)
	}
}

func TestComputeRiskFailures(t *testing.T) {
	src := mapSource{
		"EARLY": pricesFrom(0, 1, 2, 3),
		"LATE":  pricesFrom(10, 1, 2, 3),
		"ONE":   pricesFrom(0, 5),
	}
	agg := newAggregator(src, stubEstimator())

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"nothing resolves", Request{Tickers: []string{"X", "Y"}, Weights: []float64{1, 1}, PortfolioValue: 1}, ErrNoValidAssets},
		{"empty dataset skipped", Request{Tickers: []string{"ONE"}, Weights: []float64{1}, PortfolioValue: 1}, ErrNoValidAssets},
		{"no overlap", Request{Tickers: []string{"EARLY", "LATE"}, Weights: []float64{1, 1}, PortfolioValue: 1}, returns.ErrNoOverlappingHistory},
		{"length mismatch", Request{Tickers: []string{"EARLY"}, Weights: []float64{1, 2}, PortfolioValue: 1}, ErrInvalidRequest},
		{"zero value", Request{Tickers: []string{"EARLY"}, Weights: []float64{1}, PortfolioValue: 0}, ErrInvalidRequest},
		{"nan cash flow", Request{Tickers: []string{"EARLY"}, Weights: []float64{1}, PortfolioValue: 1, CashFlowToday: math.NaN()}, ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agg.ComputeRisk(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReportOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("%w: x", ErrInvalidRequest), "invalid"},
		{fmt.Errorf("%w: 2 holdings skipped", ErrNoValidAssets), "no_valid_assets"},
		{returns.ErrNoOverlappingHistory, "no_overlap"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reportOutcome(tt.err))
	}

	before := testutil.ToFloat64(metrics.RiskReports.WithLabelValues("no_valid_assets"))
	_, err := newAggregator(mapSource{}, stubEstimator()).ComputeRisk(context.Background(), Request{
		Tickers: []string{"X"}, Weights: []float64{1}, PortfolioValue: 1,
	})
	require.ErrorIs(t, err, ErrNoValidAssets)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RiskReports.WithLabelValues("no_valid_assets")))
}

// panicky blows up on one specific series
type panicky struct {
	Estimator
	marker float64
}

func (p panicky) Estimate(ctx context.Context, series, market returns.Series) risk.Estimate {
	if len(series.Values) > 0 && series.Values[0] == p.marker {
		panic("corrupt series")
	}
	return p.Estimator.Estimate(ctx, series, market)
}

func TestComputeRiskIsolatesAssetPanic(t *testing.T) {
	src := mapSource{
		"GOOD": pricesFrom(0, 100, 101, 99, 102),
		"BAD":  pricesFrom(0, 10, 20, 21, 22),
	}
	est := panicky{Estimator: stubEstimator(), marker: math.Log(2)}

	report, err := newAggregator(src, est).ComputeRisk(context.Background(), Request{
		Tickers:        []string{"GOOD", "BAD"},
		Weights:        []float64{0.5, 0.5},
		PortfolioValue: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, string(risk.ReasonPanic), report.Assets["BAD"].Error)
	assert.Equal(t, string(risk.ReasonInsufficientHistory), report.Assets["GOOD"].Error)
	assert.Contains(t, report.AssetsAnalytics, "BAD")

	_, err = json.Marshal(report)
	assert.NoError(t, err)
}

func TestComputeRiskTodayChange(t *testing.T) {
	src := mapSource{"A": pricesFrom(0, 100, 100, 110)}

	report, err := newAggregator(src, stubEstimator()).ComputeRisk(context.Background(), Request{
		Tickers:        []string{"A"},
		Weights:        []float64{1},
		PortfolioValue: 1000,
		CashFlowToday:  10,
	})
	require.NoError(t, err)

	last := math.Log(1.1)
	assert.InDelta(t, math.Round((1000*last-10)*100)/100, float64(report.TodayChange.ChangeAbs), 1e-9)
	assert.InDelta(t, 9.53, float64(report.TodayChange.ChangePct), 1e-9)
}

func TestPositions(t *testing.T) {
	src := mapSource{
		"A": pricesFrom(0, 90, 100),
		"B": pricesFrom(0, 40, 50),
	}
	agg := newAggregator(src, stubEstimator())

	out, err := agg.Positions(context.Background(), []string{"A", "B", "C"}, []float64{0.5, 0.5, 0}, 10_000)
	require.NoError(t, err)

	assert.InDelta(t, 50.0, float64(out.Positions["A"]), 1e-9)
	assert.InDelta(t, 100.0, float64(out.Positions["B"]), 1e-9)
	assert.Contains(t, out.Skipped, "C")

	_, err = agg.Positions(context.Background(), []string{"C"}, []float64{1}, 10_000)
	assert.ErrorIs(t, err, ErrNoValidAssets)
}

func TestConstraintsCheck(t *testing.T) {
	c := DefaultConstraints()

	assert.NoError(t, c.Check([]string{"A", "B"}, []float64{0.5, -0.5}, 1))
	assert.ErrorIs(t, c.Check(nil, nil, 1), ErrInvalidRequest)
	assert.ErrorIs(t, c.Check([]string{"A", "A"}, []float64{1, 1}, 1), ErrInvalidRequest)
	assert.ErrorIs(t, c.Check([]string{""}, []float64{1}, 1), ErrInvalidRequest)
	assert.ErrorIs(t, c.Check([]string{"A"}, []float64{math.Inf(1)}, 1), ErrInvalidRequest)
	assert.ErrorIs(t, c.Check([]string{"A"}, []float64{1}, math.NaN()), ErrInvalidRequest)

	many := make([]string, c.MaxHoldings+1)
	w := make([]float64, len(many))
	for i := range many {
		many[i] = string(rune('a' + i%26)) + string(rune('A'+i/26))
	}
	assert.ErrorIs(t, c.Check(many, w, 1), ErrInvalidRequest)
}
