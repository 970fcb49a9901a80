package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/risk"
)

// var-engine is the stand-alone VaR/ES delegate used by VAR_ENGINE_MODE=process.
// It reads "mu sigma" on stdin and prints {"var": ..., "es": ...} on stdout.
func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	engine := risk.NewSimulatedEngine()

	cmd := &cobra.Command{
		Use:   "var-engine",
		Short: "Monte Carlo VaR/ES for a normal P&L distribution",
		Long: `Reads "mu sigma" from stdin and writes {"var": x, "es": y} to stdout.

Example:
  echo "0.001 0.02" | var-engine
  echo "0.001 0.02" | var-engine --confidence 0.975 --simulations 100000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), engine); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&engine.Confidence, "confidence", engine.Confidence, "VaR confidence level")
	cmd.Flags().IntVar(&engine.Simulations, "simulations", engine.Simulations, "number of P&L samples")
	cmd.Flags().Int64Var(&engine.Seed, "seed", engine.Seed, "random seed")
	return cmd
}

// run parses one request, computes it and writes the JSON response
func run(ctx context.Context, in io.Reader, out io.Writer, engine risk.VaRESEngine) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var mu, sigma float64
	if _, err := fmt.Fscan(in, &mu, &sigma); err != nil {
		return fmt.Errorf("expected \"mu sigma\" on stdin: %w", err)
	}

	res, err := engine.Compute(ctx, mu, sigma)
	if err != nil {
		return err
	}
	return json.NewEncoder(out).Encode(res)
}
