package scenario

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/factor"
	"github.com/wonny/riskscope/internal/simulation"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/metrics"
)

const (
	// BaseMu and BaseSigma are the unshocked annual market drift and volatility
	BaseMu    = 0.08
	BaseSigma = 0.15

	// ProjectionDays is the display horizon of the percentile bands
	ProjectionDays = 90

	// VaRAlpha is the tail quantile of the reported VaR
	VaRAlpha = 0.05
)

// Runner projects a portfolio through a named macro shock
type Runner struct {
	model     *factor.Model
	logger    *logger.Logger
	paths     int
	days      int
	baseMu    float64
	baseSigma float64
}

// Option configures a Runner
type Option func(*Runner)

// WithPaths overrides the number of simulated paths
func WithPaths(n int) Option {
	return func(r *Runner) { r.paths = n }
}

// WithDays overrides the simulated horizon
func WithDays(n int) Option {
	return func(r *Runner) { r.days = n }
}

// WithBase overrides the unshocked drift and volatility
func WithBase(mu, sigma float64) Option {
	return func(r *Runner) { r.baseMu, r.baseSigma = mu, sigma }
}

// NewRunner creates a Runner over model
func NewRunner(model *factor.Model, log *logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		model:     model,
		logger:    log.WithComponent("scenario"),
		paths:     simulation.DefaultPaths,
		days:      simulation.DefaultDays,
		baseMu:    BaseMu,
		baseSigma: BaseSigma,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Seed derives the simulation seed of a scenario: xxhash64(id) mod 2^32
func Seed(scenarioID string) uint64 {
	return xxhash.Sum64String(scenarioID) % (1 << 32)
}

// Run builds the scenario report. An unknown scenario id is fatal;
// holdings missing from the beta table are skipped.
func (r *Runner) Run(ctx context.Context, scenarioID string, p contracts.Portfolio) (*contracts.ScenarioReport, error) {
	start := time.Now()
	report, err := r.run(ctx, scenarioID, p)

	label, outcome := scenarioID, "ok"
	switch {
	case errors.Is(err, factor.ErrUnknownScenario):
		// unbounded ids stay out of the label set
		label, outcome = "unknown", "unknown_scenario"
	case err != nil:
		outcome = "error"
	}
	metrics.ScenarioRunDuration.WithLabelValues(label, outcome).Observe(time.Since(start).Seconds())
	return report, err
}

func (r *Runner) run(ctx context.Context, scenarioID string, p contracts.Portfolio) (*contracts.ScenarioReport, error) {
	shock, err := r.model.Scenario(scenarioID)
	if err != nil {
		return nil, err
	}
	if !(p.Value > 0) || math.IsInf(p.Value, 0) {
		return nil, fmt.Errorf("%w: portfolio value %v", simulation.ErrInvalidParams, p.Value)
	}

	log := r.logger.WithField("scenario", scenarioID)

	impacts := make(map[string]contracts.Float, p.Count())
	for _, h := range p.Holdings {
		beta, err := r.model.BetaOf(h.Ticker)
		if err != nil {
			log.WithError(err).WithField("ticker", h.Ticker).Warn("no factor betas for holding, skipping impact")
			continue
		}
		impacts[h.Ticker] = contracts.Float(contracts.Round(factor.ImpactPct(beta, shock)*h.Weight, 2))
	}

	mu, sigma := factor.Adjust(r.baseMu, r.baseSigma, shock)
	seed := Seed(scenarioID)

	paths, err := simulation.Simulate(ctx, simulation.Params{
		Initial: p.Value,
		Mu:      mu,
		Sigma:   sigma,
		Days:    r.days,
		Paths:   r.paths,
		Seed:    seed,
	})
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", scenarioID, err)
	}

	recovery, err := simulation.RecoveryTime(ctx, paths, seed)
	if err != nil {
		return nil, fmt.Errorf("recovery %s: %w", scenarioID, err)
	}

	loss := simulation.ExpectedLoss(paths)
	bands := simulation.PathSummary(paths).Truncate(ProjectionDays)

	all := r.model.AllScenarioImpacts(shock)
	results := make([]contracts.AssetImpact, len(all))
	for i, imp := range all {
		results[i] = contracts.AssetImpact{Asset: imp.Asset, Impact: contracts.Float(contracts.Round(imp.Impact, 2))}
	}

	report := &contracts.ScenarioReport{
		RunID:              uuid.NewString(),
		ScenarioID:         scenarioID,
		AssetImpact:        impacts,
		ExpectedLoss:       contracts.Float(contracts.Round(loss, 0)),
		ExpectedLossPct:    contracts.Float(contracts.Round(loss/p.Value*100, 2)),
		MaxDrawdown:        contracts.Float(contracts.Round(simulation.MaxDrawdown(paths)*100, 2)),
		VaR95:              contracts.Float(contracts.Round(simulation.ValueAtRisk(paths, VaRAlpha)*100, 2)),
		ScenarioResults:    results,
		RecoveryTimeMonths: contracts.Float(contracts.Round(recovery.Months, 1)),
		Projection: contracts.Projection{
			Median: contracts.Floats(bands.Median),
			P10:    contracts.Floats(bands.P10),
			P90:    contracts.Floats(bands.P90),
		},
	}

	log.WithFields(map[string]interface{}{
		"run_id":        report.RunID,
		"mu":            mu,
		"sigma":         sigma,
		"regime":        recovery.Regime,
		"expected_loss": report.ExpectedLoss,
	}).Info("scenario run completed")

	return report, nil
}

// Catalog lists every scenario with named factor shocks
func Catalog(model *factor.Model) []contracts.ScenarioInfo {
	ids := model.Scenarios()
	out := make([]contracts.ScenarioInfo, 0, len(ids))
	for _, id := range ids {
		v, err := model.Scenario(id)
		if err != nil {
			continue
		}
		factors := make(map[string]contracts.Float, factor.NumFactors)
		for name, x := range v.Map() {
			factors[name] = contracts.Float(x)
		}
		out = append(out, contracts.ScenarioInfo{ID: id, Factors: factors})
	}
	return out
}
