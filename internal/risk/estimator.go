package risk

import (
	"context"
	"fmt"
	"math"

	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/metrics"
)

// scale conditions returns for the volatility fit
const scale = 100.0

// Estimator fits a volatility model to a return series and derives tail metrics.
// It never returns an error: failures degrade to a zero estimate with a Reason.
type Estimator struct {
	engine   VaRESEngine
	logger   *logger.Logger
	riskFree float64
}

// Option configures an Estimator
type Option func(*Estimator)

// WithRiskFree sets the per-period risk-free rate used by Sharpe
func WithRiskFree(rate float64) Option {
	return func(e *Estimator) { e.riskFree = rate }
}

// NewEstimator creates an estimator delegating VaR/ES to engine
func NewEstimator(engine VaRESEngine, log *logger.Logger, opts ...Option) *Estimator {
	e := &Estimator{
		engine: engine,
		logger: log.WithComponent("risk"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate computes tail metrics for series. market, when non-empty,
// is the benchmark for beta; it is inner-joined to series by date.
func (e *Estimator) Estimate(ctx context.Context, series returns.Series, market returns.Series) (est Estimate) {
	defer func() {
		if r := recover(); r != nil {
			est = e.degrade(ReasonPanic, fmt.Errorf("panic: %v", r))
		}
	}()

	rets := series.Values
	if len(rets) < MinObservations {
		return Degenerate(ReasonInsufficientHistory, nil)
	}
	if PopStdDev(rets) == 0 {
		return Degenerate(ReasonZeroVariance, nil)
	}

	scaled := make([]float64, len(rets))
	for i, r := range rets {
		scaled[i] = r * scale
	}

	fit, err := FitGARCH(scaled)
	if err != nil {
		return e.degrade(ReasonModelFit, err)
	}

	mu1d := fit.Mu / scale
	sigma1d := fit.LastSigma / scale
	muH := mu1d * HorizonDays
	sigmaH := sigma1d * math.Sqrt(HorizonDays)

	tail, err := e.engine.Compute(ctx, muH, sigmaH)
	if err != nil {
		return e.degrade(ReasonExternalEngine, err)
	}

	return Estimate{
		VaR:         tail.VaR,
		ES:          tail.ES,
		Sharpe:      Sharpe(rets, e.riskFree),
		MaxDrawdown: MaxDrawdown(rets),
		Volatility:  AnnualizedVolatility(rets),
		Beta:        BetaToMarket(series, market),
		Mu1D:        mu1d,
		Sigma1D:     sigma1d,
	}
}

func (e *Estimator) degrade(reason Reason, cause error) Estimate {
	metrics.DegenerateEstimates.WithLabelValues(string(reason)).Inc()
	e.logger.WithError(cause).WithField("reason", reason).Warn("tail-risk estimate degraded to zero")
	return Degenerate(reason, cause)
}
