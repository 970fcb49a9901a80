package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/internal/risk"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/metrics"
)

// PriceSource supplies ascending daily closes for an asset id
type PriceSource interface {
	History(ctx context.Context, assetID string) ([]returns.Price, error)
}

// Estimator is the tail-risk capability the aggregator depends on
type Estimator interface {
	Estimate(ctx context.Context, series, market returns.Series) risk.Estimate
}

// Request is one portfolio risk computation
type Request struct {
	Tickers        []string
	Weights        []float64
	PortfolioValue float64
	CashFlowToday  float64
}

// Config defines aggregator parameters
type Config struct {
	MarketIndex string // benchmark asset id for beta
	Parallelism int    // concurrent per-asset computations
	Constraints Constraints
}

// DefaultConfig returns the default aggregator configuration
func DefaultConfig() Config {
	return Config{
		MarketIndex: "SPY",
		Parallelism: 8,
		Constraints: DefaultConstraints(),
	}
}

// Aggregator builds the full risk report of a weighted basket
// ⭐ SSOT: 포트폴리오 리스크 집계는 여기서만
type Aggregator struct {
	config    Config
	source    PriceSource
	estimator Estimator
	logger    *logger.Logger
}

// NewAggregator creates a new portfolio aggregator
func NewAggregator(config Config, source PriceSource, estimator Estimator, log *logger.Logger) *Aggregator {
	if config.Parallelism <= 0 {
		config.Parallelism = 1
	}
	return &Aggregator{
		config:    config,
		source:    source,
		estimator: estimator,
		logger:    log.WithComponent("portfolio"),
	}
}

// resolved is one holding whose return series was obtained
type resolved struct {
	ticker string
	weight float64
	series returns.Series
}

// ComputeRisk resolves every holding, aligns them by date and reports
// tail risk and analytics for the weighted composite and each asset.
//
// Holdings without metadata or data are skipped. The request fails only
// when nothing resolves or the resolved series share no dates.
func (a *Aggregator) ComputeRisk(ctx context.Context, req Request) (*contracts.RiskReport, error) {
	report, err := a.computeRisk(ctx, req)
	metrics.RiskReports.WithLabelValues(reportOutcome(err)).Inc()
	if report != nil {
		metrics.SkippedHoldings.Add(float64(len(report.Skipped)))
	}
	return report, err
}

func reportOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, ErrNoValidAssets):
		return "no_valid_assets"
	case errors.Is(err, returns.ErrNoOverlappingHistory), errors.Is(err, returns.ErrEmptyDataset):
		return "no_overlap"
	default:
		return "error"
	}
}

func (a *Aggregator) computeRisk(ctx context.Context, req Request) (*contracts.RiskReport, error) {
	if err := a.config.Constraints.Check(req.Tickers, req.Weights, req.PortfolioValue); err != nil {
		return nil, err
	}
	if math.IsNaN(req.CashFlowToday) || math.IsInf(req.CashFlowToday, 0) {
		return nil, fmt.Errorf("%w: cash flow is not finite", ErrInvalidRequest)
	}

	// 1. Resolve return series
	assets, skipped := a.resolve(ctx, req)
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: %d holdings skipped", ErrNoValidAssets, len(skipped))
	}
	market := a.market(ctx, assets)

	// 2. Align by date and renormalize
	cols := make([]returns.Series, len(assets))
	raw := make([]float64, len(assets))
	for i, as := range assets {
		cols[i] = as.series
		raw[i] = as.weight
	}
	aligned, err := returns.Intersect(cols...)
	if err != nil {
		return nil, err
	}
	weights := returns.NormalizeWeights(raw)

	composite, err := returns.Composite(aligned, weights)
	if err != nil {
		return nil, err
	}

	// 3. Composite and per-asset estimates
	report := &contracts.RiskReport{
		RunID:           uuid.NewString(),
		Assets:          make(map[string]contracts.RiskMetrics, len(assets)),
		AssetsAnalytics: make(map[string]contracts.ReturnAnalytics, len(assets)),
		ResolvedWeights: make(map[string]contracts.Float, len(assets)),
		Skipped:         skipped,
	}
	if d, _, ok := composite.Last(); ok {
		report.AsOf = d.Format(dateLayout)
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(a.config.Parallelism)

	g.Go(func() error {
		est := a.estimator.Estimate(ctx, composite, market)
		analytics := a.analytics("portfolio", composite)
		mu.Lock()
		report.Portfolio = est.Metrics()
		report.PortfolioAnalytics = analytics
		mu.Unlock()
		return nil
	})

	for i, as := range assets {
		series := aligned.Column(i)
		g.Go(func() error {
			block, analytics := a.assetBlock(ctx, as.ticker, series, market)
			mu.Lock()
			report.Assets[as.ticker] = block
			report.AssetsAnalytics[as.ticker] = analytics
			report.ResolvedWeights[as.ticker] = contracts.Float(weights[i])
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report.TodayChange = TodayChange(composite, req.PortfolioValue, req.CashFlowToday)

	a.logger.WithFields(map[string]interface{}{
		"run_id":       report.RunID,
		"resolved":     len(assets),
		"skipped":      len(skipped),
		"observations": composite.Len(),
	}).Info("portfolio risk computed")

	return report, nil
}

// resolve fetches holdings concurrently; failures are recorded, not returned
func (a *Aggregator) resolve(ctx context.Context, req Request) ([]resolved, map[string]string) {
	slots := make([]*resolved, len(req.Tickers))
	reasons := make([]error, len(req.Tickers))

	var g errgroup.Group
	g.SetLimit(a.config.Parallelism)
	for i, ticker := range req.Tickers {
		g.Go(func() error {
			series, err := a.series(ctx, ticker)
			if err != nil {
				reasons[i] = err
				return nil
			}
			slots[i] = &resolved{ticker: ticker, weight: req.Weights[i], series: series}
			return nil
		})
	}
	_ = g.Wait()

	var out []resolved
	skipped := make(map[string]string)
	for i, slot := range slots {
		if slot == nil {
			a.logger.WithError(reasons[i]).WithField("ticker", req.Tickers[i]).Warn("skipping holding")
			skipped[req.Tickers[i]] = reasons[i].Error()
			continue
		}
		out = append(out, *slot)
	}
	if len(skipped) == 0 {
		skipped = nil
	}
	return out, skipped
}

func (a *Aggregator) series(ctx context.Context, ticker string) (returns.Series, error) {
	prices, err := a.source.History(ctx, ticker)
	if err != nil {
		return returns.Series{}, err
	}
	return returns.LogReturns(prices)
}

// market returns the benchmark series, reusing a resolved holding when possible.
// A missing benchmark leaves beta at zero.
func (a *Aggregator) market(ctx context.Context, assets []resolved) returns.Series {
	if a.config.MarketIndex == "" {
		return returns.Series{}
	}
	for _, as := range assets {
		if as.ticker == a.config.MarketIndex {
			return as.series
		}
	}
	series, err := a.series(ctx, a.config.MarketIndex)
	if err != nil {
		a.logger.WithError(err).WithField("index", a.config.MarketIndex).Warn("market index unavailable, beta will be zero")
		return returns.Series{}
	}
	return series
}

// assetBlock isolates one asset: a panic becomes an annotated degenerate entry
func (a *Aggregator) assetBlock(ctx context.Context, ticker string, series, market returns.Series) (block contracts.RiskMetrics, analytics contracts.ReturnAnalytics) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithField("ticker", ticker).Errorf("asset computation panicked: %v", r)
			block = risk.Degenerate(risk.ReasonPanic, fmt.Errorf("panic: %v", r)).Metrics()
			analytics = Analytics(returns.Series{})
		}
	}()
	block = a.estimator.Estimate(ctx, series, market).Metrics()
	analytics = a.analytics(ticker, series)
	return block, analytics
}

func (a *Aggregator) analytics(name string, s returns.Series) (out contracts.ReturnAnalytics) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithField("series", name).Errorf("analytics panicked: %v", r)
			out = Analytics(returns.Series{})
		}
	}()
	return Analytics(s)
}
