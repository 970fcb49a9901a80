package commands

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/api/handlers"
	"github.com/wonny/riskscope/internal/chart"
	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/factor"
	"github.com/wonny/riskscope/internal/scenario"
	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/logger"
)

// scenarioCmd represents the scenario command
var scenarioCmd = &cobra.Command{
	Use:   "scenario SCENARIO_ID TICKER=WEIGHT [TICKER=WEIGHT ...]",
	Short: "스트레스 시나리오 시뮬레이션",
	Long: `매크로 팩터 충격 시나리오로 포트폴리오를 시뮬레이션합니다.

Impacts use the raw weights. The Monte Carlo projection uses the
scenario-adjusted drift and volatility and a seed derived from the id.

Example:
  go run ./cmd/riskctl scenario market-crash AAPL=0.5 GOOG=0.5 --value 1000000
  go run ./cmd/riskctl scenario recession SPY=0.6 BND=0.4 --chart projection.png`,
	Args: cobra.MinimumNArgs(2),
	RunE: runScenario,
}

// scenariosCmd lists the catalog
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "시나리오 목록",
	RunE:  listScenarios,
}

// assetsCmd lists the asset universe
var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "자산 목록 (메타데이터 + 팩터 베타)",
	RunE:  listAssets,
}

var (
	scenarioValue float64
	scenarioChart string
	scenarioJSON  bool
)

func init() {
	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(assetsCmd)

	scenarioCmd.Flags().Float64Var(&scenarioValue, "value", 100_000, "portfolio value")
	scenarioCmd.Flags().StringVar(&scenarioChart, "chart", "", "write the projection chart PNG to this path")
	scenarioCmd.Flags().BoolVar(&scenarioJSON, "json", false, "print the raw report as JSON")
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenarioID := args[0]
	tickers, weights, err := parseHoldings(args[1:])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// 시나리오 실행은 가격 데이터가 필요 없음
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	model, err := modelFor(cfg)
	if err != nil {
		return err
	}
	d := &deps{cfg: cfg, log: logger.New(cfg), model: model}

	report, err := d.runner().Run(ctx, scenarioID, contracts.NewPortfolio(tickers, weights, scenarioValue))
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if scenarioChart != "" {
		png, err := chart.Projection(report)
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		if err := os.WriteFile(scenarioChart, png, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
	}

	if scenarioJSON {
		return PrintJSON(report)
	}
	printScenarioReport(report, scenarioValue)
	if scenarioChart != "" {
		PrintSuccess("Projection chart written to " + scenarioChart)
	}
	return nil
}

// printScenarioReport renders a scenario report
func printScenarioReport(report *contracts.ScenarioReport, value float64) {
	PrintHeader("Scenario: "+report.ScenarioID, [][2]string{
		{"Run ID", report.RunID},
		{"Value", fmt.Sprintf("%.2f", value)},
	})

	PrintKeyValue("Expected loss", fmt.Sprintf("%s (%s%%)", formatFloat(report.ExpectedLoss, 0), formatFloat(report.ExpectedLossPct, 2)), 16)
	PrintKeyValue("Max drawdown", formatFloat(report.MaxDrawdown, 2)+"%", 16)
	PrintKeyValue("VaR 95%", formatFloat(report.VaR95, 2)+"%", 16)
	PrintKeyValue("Recovery", formatFloat(report.RecoveryTimeMonths, 1)+" months", 16)
	if n := len(report.Projection.Median); n > 0 {
		PrintKeyValue(fmt.Sprintf("Day %d median", n), formatFloat(report.Projection.Median[n-1], 0), 16)
	}

	fmt.Fprintln(out)
	widths := []int{10, 10}
	PrintTableHeader([]string{"Holding", "Impact %"}, widths)

	tickers := make([]string, 0, len(report.AssetImpact))
	for t := range report.AssetImpact {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		PrintTableRow([]string{t, formatFloat(report.AssetImpact[t], 2)}, widths)
	}
}

func listScenarios(cmd *cobra.Command, args []string) error {
	model, err := loadModel()
	if err != nil {
		return err
	}

	columns := append([]string{"Scenario"}, factor.Names[:]...)
	widths := []int{20}
	for range factor.Names {
		widths = append(widths, 9)
	}
	PrintTableHeader(columns, widths)

	for _, s := range scenario.Catalog(model) {
		row := []string{s.ID}
		for _, name := range factor.Names {
			row = append(row, formatFloat(s.Factors[name], 2))
		}
		PrintTableRow(row, widths)
	}
	return nil
}

func listAssets(cmd *cobra.Command, args []string) error {
	model, err := loadModel()
	if err != nil {
		return err
	}

	widths := []int{8, 12, 12, 7, 7}
	PrintTableHeader([]string{"Asset", "Kind", "Symbol", "Market", "Rates"}, widths)
	for _, a := range handlers.AssetUniverse(model) {
		market, rates := "-", "-"
		if a.Beta != nil {
			market = formatFloat(a.Beta["market"], 2)
			rates = formatFloat(a.Beta["rates"], 2)
		}
		PrintTableRow([]string{a.ID, a.Kind, a.Symbol, market, rates}, widths)
	}
	return nil
}

// loadModel loads config and returns the factor model it selects
func loadModel() (*factor.Model, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return modelFor(cfg)
}

// modelFor returns the factor model override or the built-in tables
func modelFor(cfg *config.Config) (*factor.Model, error) {
	if cfg.FactorModelPath == "" {
		return factor.Default(), nil
	}
	model, err := factor.Load(cfg.FactorModelPath)
	if err != nil {
		return nil, fmt.Errorf("load factor model: %w", err)
	}
	return model, nil
}
