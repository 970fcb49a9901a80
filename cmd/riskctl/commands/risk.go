package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/portfolio"
)

// riskCmd represents the risk command
var riskCmd = &cobra.Command{
	Use:   "risk TICKER=WEIGHT [TICKER=WEIGHT ...]",
	Short: "포트폴리오 리스크 계산",
	Long: `포트폴리오의 10일 VaR/ES, Sharpe, 최대 낙폭, 변동성, 베타를 계산합니다.

Weights are renormalized to sum to 1. Holdings without data are skipped.

Example:
  go run ./cmd/riskctl risk AAPL=0.6 BND=0.4 --value 100000
  go run ./cmd/riskctl risk SPY GOLD BTC --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRisk,
}

var (
	riskValue    float64
	riskCashFlow float64
	riskJSON     bool
)

func init() {
	rootCmd.AddCommand(riskCmd)

	riskCmd.Flags().Float64Var(&riskValue, "value", 100_000, "portfolio value")
	riskCmd.Flags().Float64Var(&riskCashFlow, "cash-flow", 0, "today's external cash flow")
	riskCmd.Flags().BoolVar(&riskJSON, "json", false, "print the raw report as JSON")
}

func runRisk(cmd *cobra.Command, args []string) error {
	tickers, weights, err := parseHoldings(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	aggregator, err := d.aggregator()
	if err != nil {
		return err
	}

	report, err := aggregator.ComputeRisk(ctx, portfolio.Request{
		Tickers:        tickers,
		Weights:        weights,
		PortfolioValue: riskValue,
		CashFlowToday:  riskCashFlow,
	})
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if riskJSON {
		return PrintJSON(report)
	}
	printRiskReport(report)
	return nil
}

// printRiskReport renders a risk report as a table
func printRiskReport(report *contracts.RiskReport) {
	PrintHeader("Portfolio Risk", [][2]string{
		{"Run ID", report.RunID},
		{"As of", report.AsOf},
		{"Today", fmt.Sprintf("%s (%s%%)", formatFloat(report.TodayChange.ChangeAbs, 2), formatFloat(report.TodayChange.ChangePct, 2))},
	})

	columns := []string{"Asset", "Weight", "VaR(10d)", "ES(10d)", "Sharpe", "MaxDD", "Vol", "Beta", "Note"}
	widths := []int{10, 8, 9, 9, 7, 8, 8, 6, 22}
	PrintTableHeader(columns, widths)

	tickers := make([]string, 0, len(report.Assets))
	for t := range report.Assets {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, t := range tickers {
		PrintTableRow(metricsRow(t, formatPct(report.ResolvedWeights[t]), report.Assets[t]), widths)
	}
	PrintSeparator()
	PrintTableRow(metricsRow("PORTFOLIO", "100.00%", report.Portfolio), widths)

	if len(report.Skipped) > 0 {
		fmt.Fprintln(out)
		skipped := make([]string, 0, len(report.Skipped))
		for t := range report.Skipped {
			skipped = append(skipped, t)
		}
		sort.Strings(skipped)
		for _, t := range skipped {
			PrintWarning(fmt.Sprintf("skipped %s: %s", t, report.Skipped[t]))
		}
	}
}

func metricsRow(name, weight string, m contracts.RiskMetrics) []string {
	return []string{
		name,
		weight,
		formatPct(m.VaR),
		formatPct(m.ES),
		formatFloat(m.Sharpe, 2),
		formatPct(m.MaxDrawdown),
		formatOptional(m.Volatility, 3),
		formatOptional(m.Beta, 2),
		m.Error,
	}
}
