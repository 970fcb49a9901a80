package risk

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
)

// SimulatedEngine Monte Carlo VaR/ES 엔진.
// Draws N normal P&L samples from a fixed seed, so identical inputs give identical output.
type SimulatedEngine struct {
	Confidence  float64
	Simulations int
	Seed        int64
}

// NewSimulatedEngine returns the engine with the standard settings (0.99, 50000, 42)
func NewSimulatedEngine() *SimulatedEngine {
	return &SimulatedEngine{Confidence: 0.99, Simulations: 50000, Seed: 42}
}

// Compute implements VaRESEngine
func (e *SimulatedEngine) Compute(ctx context.Context, mu, sigma float64) (VaRES, error) {
	if e.Simulations <= 0 {
		return VaRES{}, fmt.Errorf("%w: simulations must be > 0", ErrExternalEngine)
	}
	if !finite(mu, sigma) || sigma < 0 {
		return VaRES{}, fmt.Errorf("%w: invalid parameters mu=%v sigma=%v", ErrExternalEngine, mu, sigma)
	}

	rng := rand.New(rand.NewSource(e.Seed))
	pnl := make([]float64, e.Simulations)
	for i := range pnl {
		if i&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return VaRES{}, err
			}
		}
		pnl[i] = mu + sigma*rng.NormFloat64()
	}
	sort.Float64s(pnl)

	return TailVaRES(pnl, e.Confidence), nil
}

// ParametricEngine closed-form normal VaR/ES, no sampling
type ParametricEngine struct {
	Confidence float64
}

// Compute implements VaRESEngine
func (e *ParametricEngine) Compute(ctx context.Context, mu, sigma float64) (VaRES, error) {
	if err := ctx.Err(); err != nil {
		return VaRES{}, err
	}
	if !finite(mu, sigma) || sigma < 0 {
		return VaRES{}, fmt.Errorf("%w: invalid parameters mu=%v sigma=%v", ErrExternalEngine, mu, sigma)
	}
	return ParametricVaRES(mu, sigma, e.Confidence), nil
}
