package risk

import (
	"errors"

	"github.com/wonny/riskscope/internal/contracts"
)

var (
	ErrModelFit       = errors.New("volatility model fit failed")
	ErrExternalEngine = errors.New("var/es engine failed")
)

// Reason explains why an estimate is degenerate
type Reason string

const (
	ReasonInsufficientHistory Reason = "insufficient_history"
	ReasonZeroVariance        Reason = "zero_variance"
	ReasonModelFit            Reason = "model_fit_failure"
	ReasonExternalEngine      Reason = "external_engine_failure"
	ReasonPanic               Reason = "panic"
)

// MinObservations is the shortest series a volatility model is fitted to
const MinObservations = 50

// HorizonDays is the VaR/ES projection horizon in trading days
const HorizonDays = 10

// TradingDays annualizes daily statistics
const TradingDays = 252

// VaRES is a VaR/Expected Shortfall pair, losses positive
type VaRES struct {
	VaR float64 `json:"var"`
	ES  float64 `json:"es"`
}

// Estimate is the typed outcome of a tail-risk estimation.
// A degenerate estimate has every metric at zero and carries a Reason;
// Cause is set when the degenerate result came from a failure.
type Estimate struct {
	VaR         float64
	ES          float64
	Sharpe      float64
	MaxDrawdown float64
	Volatility  float64
	Beta        float64

	// Fitted one-day parameters in return units
	Mu1D    float64
	Sigma1D float64

	Degenerate bool
	Reason     Reason
	Cause      error
}

// Degenerate builds the all-zero estimate
func Degenerate(reason Reason, cause error) Estimate {
	return Estimate{Degenerate: true, Reason: reason, Cause: cause}
}

// Metrics converts to the wire record. Degenerate estimates omit volatility and beta.
func (e Estimate) Metrics() contracts.RiskMetrics {
	if e.Degenerate {
		return contracts.RiskMetrics{Error: string(e.Reason)}
	}
	return contracts.RiskMetrics{
		VaR:         contracts.Float(e.VaR),
		ES:          contracts.Float(e.ES),
		Sharpe:      contracts.Float(e.Sharpe),
		MaxDrawdown: contracts.Float(e.MaxDrawdown),
		Volatility:  contracts.Float(e.Volatility).Ptr(),
		Beta:        contracts.Float(e.Beta).Ptr(),
	}
}
