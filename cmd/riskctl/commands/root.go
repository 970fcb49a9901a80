package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/pkg/config"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "riskctl",
	Short: "riskscope - portfolio risk and scenario simulation engine",
	Long: `riskscope Unified CLI

Tail-risk estimation (GARCH + VaR/ES), macro-factor stress scenarios
and Monte Carlo projections for multi-asset portfolios.

Usage:
  go run ./cmd/riskctl [command]

Examples:
  go run ./cmd/riskctl api
  go run ./cmd/riskctl risk AAPL=0.6 BND=0.4 --value 100000
  go run ./cmd/riskctl scenario market-crash AAPL=0.5 GOOG=0.5 --value 1000000
  go run ./cmd/riskctl scenarios
  go run ./cmd/riskctl fetcher warm`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}

// loadConfig loads the environment config and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
