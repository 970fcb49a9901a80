package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/riskscope/pkg/metrics"
)

// =============================================================================
// Monte Carlo path simulator
// =============================================================================

const (
	// TradingDays per year, dt = 1/TradingDays
	TradingDays = 252

	// BlockSize paths share one random stream
	BlockSize = 256

	DefaultPaths = 5000
	DefaultDays  = 365
)

var ErrInvalidParams = errors.New("invalid simulation parameters")

// Params describes one geometric Brownian motion run
type Params struct {
	Initial float64
	Mu      float64 // annual drift
	Sigma   float64 // annual volatility
	Days    int
	Paths   int
	Seed    uint64
}

// Validate checks the run can be simulated
func (p Params) Validate() error {
	switch {
	case !(p.Initial > 0) || math.IsInf(p.Initial, 0):
		return fmt.Errorf("%w: initial value %v", ErrInvalidParams, p.Initial)
	case math.IsNaN(p.Mu) || math.IsInf(p.Mu, 0):
		return fmt.Errorf("%w: mu %v", ErrInvalidParams, p.Mu)
	case !(p.Sigma >= 0) || math.IsInf(p.Sigma, 0):
		return fmt.Errorf("%w: sigma %v", ErrInvalidParams, p.Sigma)
	case p.Days <= 0 || p.Paths <= 0:
		return fmt.Errorf("%w: %d paths x %d days", ErrInvalidParams, p.Paths, p.Days)
	}
	return nil
}

// PathSet is a paths x days matrix of simulated values stored row-major.
// Column d holds the value after d+1 trading days; the initial value is not stored.
type PathSet struct {
	Initial float64
	Paths   int
	Days    int
	Values  []float64
}

// Path returns the i-th trajectory (shares storage)
func (ps *PathSet) Path(i int) []float64 {
	return ps.Values[i*ps.Days : (i+1)*ps.Days]
}

// Final returns the last value of the i-th trajectory
func (ps *PathSet) Final(i int) float64 {
	return ps.Values[(i+1)*ps.Days-1]
}

// Finals returns every path's last value
func (ps *PathSet) Finals() []float64 {
	out := make([]float64, ps.Paths)
	for i := range out {
		out[i] = ps.Final(i)
	}
	return out
}

// Simulate draws daily log returns ~ N((mu - sigma^2/2)dt, sigma*sqrt(dt))
// and compounds them from p.Initial.
//
// Paths are generated in blocks of BlockSize; block b always uses the stream
// seeded by blockSeed(p.Seed, b), so output does not depend on scheduling.
func Simulate(ctx context.Context, p Params) (*PathSet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	dt := 1.0 / TradingDays
	drift := (p.Mu - 0.5*p.Sigma*p.Sigma) * dt
	vol := p.Sigma * math.Sqrt(dt)

	ps := &PathSet{
		Initial: p.Initial,
		Paths:   p.Paths,
		Days:    p.Days,
		Values:  make([]float64, p.Paths*p.Days),
	}

	blocks := (p.Paths + BlockSize - 1) / BlockSize
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for b := 0; b < blocks; b++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(blockSeed(p.Seed, b)))

			first := b * BlockSize
			last := min(first+BlockSize, p.Paths)
			for i := first; i < last; i++ {
				path := ps.Path(i)
				cum := 0.0
				for d := range path {
					cum += drift + vol*rng.NormFloat64()
					path[d] = p.Initial * math.Exp(cum)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.SimulationDuration.Observe(time.Since(start).Seconds())
	metrics.SimulatedPaths.Add(float64(p.Paths))
	return ps, nil
}

// blockSeed mixes the run seed with a stream index (splitmix64 finalizer)
func blockSeed(seed uint64, stream int) int64 {
	z := seed + uint64(stream+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
