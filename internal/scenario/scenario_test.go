package scenario

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/factor"
	"github.com/wonny/riskscope/internal/simulation"
	"github.com/wonny/riskscope/pkg/logger"
)

func newTestRunner(opts ...Option) *Runner {
	opts = append([]Option{WithPaths(1000)}, opts...)
	return NewRunner(factor.Default(), logger.Nop(), opts...)
}

func TestRunMarketCrash(t *testing.T) {
	p := contracts.NewPortfolio([]string{"AAPL", "GOOG"}, []float64{0.5, 0.5}, 1_000_000)

	report, err := newTestRunner().Run(context.Background(), "market-crash", p)
	require.NoError(t, err)

	assert.Equal(t, "market-crash", report.ScenarioID)
	assert.NotEmpty(t, report.RunID)

	require.Len(t, report.AssetImpact, 2)
	assert.Less(t, float64(report.AssetImpact["AAPL"]), 0.0)
	assert.Less(t, float64(report.AssetImpact["GOOG"]), 0.0)

	assert.Greater(t, float64(report.ExpectedLoss), 0.0)
	assert.Greater(t, float64(report.ExpectedLossPct), 0.0)
	assert.Less(t, float64(report.VaR95), 0.0)
	assert.Greater(t, float64(report.MaxDrawdown), 0.0)
	assert.GreaterOrEqual(t, float64(report.RecoveryTimeMonths), 0.0)
	assert.LessOrEqual(t, float64(report.RecoveryTimeMonths), simulation.RecoveryCapMonths)

	assert.Len(t, report.Projection.Median, ProjectionDays)
	assert.Len(t, report.Projection.P10, ProjectionDays)
	assert.Len(t, report.Projection.P90, ProjectionDays)
	assert.Len(t, report.ScenarioResults, len(factor.Default().Assets()))
}

func TestRunImpactWeighting(t *testing.T) {
	model := factor.Default()
	shock, err := model.Scenario("market-crash")
	require.NoError(t, err)
	beta, err := model.BetaOf("AAPL")
	require.NoError(t, err)

	p := contracts.NewPortfolio([]string{"AAPL"}, []float64{0.25}, 100_000)
	report, err := newTestRunner(WithDays(30)).Run(context.Background(), "market-crash", p)
	require.NoError(t, err)

	want := contracts.Round(factor.ImpactPct(beta, shock)*0.25, 2)
	assert.Equal(t, contracts.Float(want), report.AssetImpact["AAPL"])
}

func TestRunDeterministic(t *testing.T) {
	p := contracts.NewPortfolio([]string{"TSLA", "BND"}, []float64{0.6, 0.4}, 250_000)
	r := newTestRunner(WithDays(120))

	a, err := r.Run(context.Background(), "recession", p)
	require.NoError(t, err)
	b, err := r.Run(context.Background(), "recession", p)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	a.RunID, b.RunID = "", ""
	assert.Equal(t, a, b)
}

func TestRunUnknownScenario(t *testing.T) {
	p := contracts.NewPortfolio([]string{"AAPL"}, []float64{1}, 1000)

	_, err := newTestRunner().Run(context.Background(), "alien-invasion", p)
	assert.ErrorIs(t, err, factor.ErrUnknownScenario)
}

func TestRunSkipsUnknownHoldings(t *testing.T) {
	p := contracts.NewPortfolio([]string{"AAPL", "NOPE"}, []float64{0.5, 0.5}, 1000)

	report, err := newTestRunner(WithDays(20)).Run(context.Background(), "tech-boom", p)
	require.NoError(t, err)

	assert.Contains(t, report.AssetImpact, "AAPL")
	assert.NotContains(t, report.AssetImpact, "NOPE")
	assert.Len(t, report.Projection.Median, 20)
}

func TestRunRejectsNonPositiveValue(t *testing.T) {
	p := contracts.NewPortfolio([]string{"AAPL"}, []float64{1}, 0)

	_, err := newTestRunner().Run(context.Background(), "market-crash", p)
	assert.ErrorIs(t, err, simulation.ErrInvalidParams)
}

func TestReportJSONShape(t *testing.T) {
	p := contracts.NewPortfolio([]string{"AAPL"}, []float64{1}, 1000)
	report, err := newTestRunner(WithPaths(50), WithDays(10)).Run(context.Background(), "bull-market", p)
	require.NoError(t, err)

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"assetImpact", "expectedLoss", "expectedLossPct", "maxDrawdown", "VaR95", "scenarioResults", "recoveryTimeMonths", "projection"} {
		assert.Contains(t, decoded, key)
	}
}

func TestSeed(t *testing.T) {
	assert.Equal(t, Seed("market-crash"), Seed("market-crash"))
	assert.NotEqual(t, Seed("market-crash"), Seed("recession"))
	assert.Less(t, Seed("market-crash"), uint64(1)<<32)
}

func TestCatalog(t *testing.T) {
	model := factor.Default()
	catalog := Catalog(model)

	require.Len(t, catalog, len(model.Scenarios()))
	assert.Equal(t, "market-crash", catalog[0].ID)
	assert.Equal(t, contracts.Float(-0.20), catalog[0].Factors["market"])
	assert.Equal(t, contracts.Float(0.05), catalog[0].Factors["rates"])
	assert.Len(t, catalog[0].Factors, factor.NumFactors)
}
