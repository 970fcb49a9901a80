package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRegime(t *testing.T) {
	tests := []struct {
		depth  float64
		regime Regime
		theta  float64
	}{
		{0.50, RegimeCrisis, 0.10},
		{0.36, RegimeCrisis, 0.10},
		{0.35, RegimeRecession, 0.18},
		{0.25, RegimeRecession, 0.18},
		{0.20, RegimeCorrection, 0.30},
		{0, RegimeCorrection, 0.30},
	}

	for _, tt := range tests {
		regime, theta := ClassifyRegime(tt.depth)
		assert.Equal(t, tt.regime, regime, "depth=%v", tt.depth)
		assert.Equal(t, tt.theta, theta, "depth=%v", tt.depth)
	}
}

func TestRecoveryTimeNoDrawdown(t *testing.T) {
	ps := fixedSet(100, 3, []float64{101, 102, 103}, []float64{105, 106, 110})

	rec, err := RecoveryTime(context.Background(), ps, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rec.Months)
	assert.False(t, rec.Capped)
}

func TestRecoveryTimeCapped(t *testing.T) {
	ps := fixedSet(100, 2, []float64{100, 1})

	rec, err := RecoveryTime(context.Background(), ps, 1)
	require.NoError(t, err)
	assert.Equal(t, RegimeCrisis, rec.Regime)
	assert.Equal(t, 1.0, rec.Trough)
	assert.True(t, rec.Capped)
	assert.Equal(t, RecoveryCapMonths, rec.Months)
	assert.Equal(t, 0, rec.Recovered)
}

func TestRecoveryTimeBoundedAndDeterministic(t *testing.T) {
	ps, err := Simulate(context.Background(), Params{Initial: 1_000_000, Mu: -0.12, Sigma: 0.1575, Days: 365, Paths: 1000, Seed: 99})
	require.NoError(t, err)

	a, err := RecoveryTime(context.Background(), ps, 99)
	require.NoError(t, err)
	b, err := RecoveryTime(context.Background(), ps, 99)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a.Months, 0.0)
	assert.LessOrEqual(t, a.Months, RecoveryCapMonths)
	assert.Less(t, a.Trough, ps.Initial)
}

func TestRecoveryTimeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ps := fixedSet(100, 2, []float64{100, 1})
	_, err := RecoveryTime(ctx, ps, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
