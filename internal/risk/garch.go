package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// GARCHFit holds GARCH(1,1) parameters in the units of the fitted data
type GARCHFit struct {
	Mu    float64
	Omega float64
	Alpha float64
	Beta  float64

	// LastSigma is the final in-sample conditional volatility
	LastSigma float64
	LogLik    float64
}

// Persistence returns alpha + beta
func (g GARCHFit) Persistence() float64 {
	return g.Alpha + g.Beta
}

// maxPersistence keeps the fitted process covariance stationary
const maxPersistence = 0.9999

// FitGARCH fits x_t = mu + e_t, s2_t = omega + alpha*e_{t-1}^2 + beta*s2_{t-1}
// by Gaussian maximum likelihood. The variance recursion starts at the sample variance.
//
// The optimizer searches an unconstrained space:
// omega = exp(p1), alpha+beta = maxPersistence*sigmoid(p2), alpha share = sigmoid(p3).
func FitGARCH(x []float64) (GARCHFit, error) {
	if len(x) < 3 {
		return GARCHFit{}, fmt.Errorf("%w: %d observations", ErrModelFit, len(x))
	}

	mean, variance := stat.MeanVariance(x, nil)
	if !(variance > 0) || !finite(mean, variance) {
		return GARCHFit{}, fmt.Errorf("%w: sample variance %v", ErrModelFit, variance)
	}

	nll := func(p []float64) float64 {
		mu, omega, alpha, beta := unpack(p)
		ll, _ := garchLogLik(x, mu, omega, alpha, beta, variance)
		if !finite(ll) {
			return 1e100
		}
		return -ll
	}

	initial := []float64{
		mean,
		math.Log(0.05 * variance),
		logit(0.95 / maxPersistence),
		logit(0.1 / 0.95),
	}

	problem := optimize.Problem{Func: nll}
	result, err := optimize.Minimize(problem, initial, &optimize.Settings{MajorIterations: 4000}, &optimize.NelderMead{})
	if err != nil {
		return GARCHFit{}, fmt.Errorf("%w: %v", ErrModelFit, err)
	}

	switch result.Status {
	case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge,
		optimize.StepConvergence, optimize.GradientThreshold, optimize.IterationLimit:
	default:
		return GARCHFit{}, fmt.Errorf("%w: optimizer status %v", ErrModelFit, result.Status)
	}

	mu, omega, alpha, beta := unpack(result.X)
	ll, lastVar := garchLogLik(x, mu, omega, alpha, beta, variance)

	fit := GARCHFit{
		Mu:        mu,
		Omega:     omega,
		Alpha:     alpha,
		Beta:      beta,
		LastSigma: math.Sqrt(lastVar),
		LogLik:    ll,
	}
	if !finite(fit.Mu, fit.LastSigma, fit.LogLik) || fit.LastSigma <= 0 {
		return GARCHFit{}, fmt.Errorf("%w: non-finite parameters", ErrModelFit)
	}
	return fit, nil
}

func unpack(p []float64) (mu, omega, alpha, beta float64) {
	persistence := maxPersistence * sigmoid(p[2])
	share := sigmoid(p[3])
	return p[0], math.Exp(p[1]), persistence * share, persistence * (1 - share)
}

// garchLogLik returns the Gaussian log-likelihood and the last conditional variance
func garchLogLik(x []float64, mu, omega, alpha, beta, s2Start float64) (float64, float64) {
	const log2Pi = 1.8378770664093453

	s2 := s2Start
	prevE2 := s2Start
	ll := 0.0
	for t, v := range x {
		if t > 0 {
			s2 = omega + alpha*prevE2 + beta*s2
		}
		if s2 <= 0 {
			return math.Inf(-1), s2
		}
		e := v - mu
		ll -= 0.5 * (log2Pi + math.Log(s2) + e*e/s2)
		prevE2 = e * e
	}
	return ll, s2
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
