package risk

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/pkg/logger"
)

func normalSeries(n int, seed int64) returns.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = 0.0005 + 0.01*rng.NormFloat64()
	}
	return returns.Series{Dates: dates(n), Values: values}
}

func fixedEngine(v VaRES) EngineFunc {
	return func(ctx context.Context, mu, sigma float64) (VaRES, error) {
		return v, nil
	}
}

func TestEstimateDegenerate(t *testing.T) {
	est := NewEstimator(fixedEngine(VaRES{VaR: 1, ES: 2}), logger.Nop())
	ctx := context.Background()

	tests := []struct {
		name   string
		series returns.Series
		reason Reason
	}{
		{"short history", normalSeries(49, 1), ReasonInsufficientHistory},
		{"empty", returns.Series{}, ReasonInsufficientHistory},
		{"flat", returns.Series{Dates: dates(60), Values: make([]float64, 60)}, ReasonZeroVariance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := est.Estimate(ctx, tt.series, returns.Series{})
			assert.True(t, got.Degenerate)
			assert.Equal(t, tt.reason, got.Reason)
			assert.NoError(t, got.Cause)

			m := got.Metrics()
			assert.Equal(t, contracts.Float(0), m.VaR)
			assert.Equal(t, contracts.Float(0), m.ES)
			assert.Equal(t, contracts.Float(0), m.Sharpe)
			assert.Equal(t, contracts.Float(0), m.MaxDrawdown)
			assert.Nil(t, m.Volatility)
			assert.Nil(t, m.Beta)
			assert.Equal(t, string(tt.reason), m.Error)
		})
	}
}

func TestEstimateProjectsHorizon(t *testing.T) {
	var gotMu, gotSigma float64
	engine := EngineFunc(func(ctx context.Context, mu, sigma float64) (VaRES, error) {
		gotMu, gotSigma = mu, sigma
		return VaRES{VaR: 0.05, ES: 0.07}, nil
	})

	series := normalSeries(500, 3)
	got := NewEstimator(engine, logger.Nop()).Estimate(context.Background(), series, series)

	require.False(t, got.Degenerate, "cause: %v", got.Cause)
	assert.Equal(t, 0.05, got.VaR)
	assert.Equal(t, 0.07, got.ES)
	assert.InDelta(t, got.Mu1D*HorizonDays, gotMu, 1e-15)
	assert.InDelta(t, got.Sigma1D*math.Sqrt(HorizonDays), gotSigma, 1e-15)
	assert.Greater(t, got.Sigma1D, 0.0)

	// fitted daily volatility stays near the generating 1%
	assert.InDelta(t, 0.01, got.Sigma1D, 0.005)
	assert.InDelta(t, 1.0, got.Beta, 1e-9)
	assert.InDelta(t, AnnualizedVolatility(series.Values), got.Volatility, 1e-15)
	assert.GreaterOrEqual(t, got.MaxDrawdown, 0.0)
	assert.LessOrEqual(t, got.MaxDrawdown, 1.0)

	m := got.Metrics()
	require.NotNil(t, m.Volatility)
	require.NotNil(t, m.Beta)
	assert.Empty(t, m.Error)
}

func TestEstimateFailsSoftOnEngineError(t *testing.T) {
	boom := errors.New("connection refused")
	engine := EngineFunc(func(ctx context.Context, mu, sigma float64) (VaRES, error) {
		return VaRES{}, boom
	})

	got := NewEstimator(engine, logger.Nop()).Estimate(context.Background(), normalSeries(200, 4), returns.Series{})

	assert.True(t, got.Degenerate)
	assert.Equal(t, ReasonExternalEngine, got.Reason)
	assert.ErrorIs(t, got.Cause, boom)
	assert.Equal(t, "external_engine_failure", got.Metrics().Error)
}

func TestEstimateFailsSoftOnTimeout(t *testing.T) {
	hang := EngineFunc(func(ctx context.Context, mu, sigma float64) (VaRES, error) {
		<-ctx.Done()
		return VaRES{}, ctx.Err()
	})

	start := time.Now()
	got := NewEstimator(WithTimeout(hang, 20*time.Millisecond), logger.Nop()).
		Estimate(context.Background(), normalSeries(200, 5), returns.Series{})

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, got.Degenerate)
	assert.Equal(t, ReasonExternalEngine, got.Reason)
}

func TestEstimateRecoversPanic(t *testing.T) {
	engine := EngineFunc(func(ctx context.Context, mu, sigma float64) (VaRES, error) {
		panic("engine exploded")
	})

	got := NewEstimator(engine, logger.Nop()).Estimate(context.Background(), normalSeries(200, 6), returns.Series{})

	assert.True(t, got.Degenerate)
	assert.Equal(t, ReasonPanic, got.Reason)
	assert.Error(t, got.Cause)
}

func TestEstimateWithRiskFree(t *testing.T) {
	series := normalSeries(300, 8)
	engine := fixedEngine(VaRES{VaR: 0.1, ES: 0.1})

	base := NewEstimator(engine, logger.Nop()).Estimate(context.Background(), series, returns.Series{})
	withRF := NewEstimator(engine, logger.Nop(), WithRiskFree(0.001)).Estimate(context.Background(), series, returns.Series{})

	assert.Less(t, withRF.Sharpe, base.Sharpe)
	assert.Equal(t, 0.0, base.Beta)
}
