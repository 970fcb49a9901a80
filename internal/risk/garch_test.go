package risk

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simulateGARCH draws n observations from a GARCH(1,1) with fixed seed
func simulateGARCH(n int, mu, omega, alpha, beta float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	s2 := omega / (1 - alpha - beta)
	x := make([]float64, n)
	prevE2 := s2
	for t := range x {
		if t > 0 {
			s2 = omega + alpha*prevE2 + beta*s2
		}
		e := math.Sqrt(s2) * rng.NormFloat64()
		x[t] = mu + e
		prevE2 = e * e
	}
	return x
}

func TestFitGARCHRecoversParameters(t *testing.T) {
	x := simulateGARCH(3000, 0.05, 0.05, 0.10, 0.85, 7)

	fit, err := FitGARCH(x)
	require.NoError(t, err)

	assert.InDelta(t, 0.05, fit.Mu, 0.1)
	assert.Greater(t, fit.Persistence(), 0.7)
	assert.Less(t, fit.Persistence(), 1.0)
	assert.GreaterOrEqual(t, fit.Alpha, 0.0)
	assert.GreaterOrEqual(t, fit.Beta, 0.0)
	assert.Greater(t, fit.Omega, 0.0)
	assert.Greater(t, fit.LastSigma, 0.0)
	assert.False(t, math.IsNaN(fit.LogLik))
}

func TestFitGARCHRejectsDegenerateInput(t *testing.T) {
	_, err := FitGARCH([]float64{1, 2})
	assert.ErrorIs(t, err, ErrModelFit)

	flat := make([]float64, 100)
	_, err = FitGARCH(flat)
	assert.ErrorIs(t, err, ErrModelFit)

	_, err = FitGARCH([]float64{1, math.NaN(), 2, 3})
	assert.ErrorIs(t, err, ErrModelFit)
}

func TestUnpackKeepsStationarity(t *testing.T) {
	for _, p := range [][]float64{
		{0, 0, 50, 50},
		{0, -3, -50, 0},
		{1, 2, 0, -50},
	} {
		_, omega, alpha, beta := unpack(p)
		assert.Greater(t, omega, 0.0)
		assert.GreaterOrEqual(t, alpha, 0.0)
		assert.GreaterOrEqual(t, beta, 0.0)
		assert.Less(t, alpha+beta, 1.0)
	}
}
