package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// parseHoldings reads TICKER=WEIGHT arguments in order.
// A bare TICKER gets weight 1 so equal-weight baskets can be written tersely.
func parseHoldings(args []string) ([]string, []float64, error) {
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("at least one TICKER=WEIGHT holding is required")
	}

	tickers := make([]string, 0, len(args))
	weights := make([]float64, 0, len(args))
	for _, arg := range args {
		ticker, raw, hasWeight := strings.Cut(arg, "=")
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" {
			return nil, nil, fmt.Errorf("holding %q has no ticker", arg)
		}

		weight := 1.0
		if hasWeight {
			w, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("holding %q: invalid weight: %w", arg, err)
			}
			weight = w
		}

		tickers = append(tickers, ticker)
		weights = append(weights, weight)
	}
	return tickers, weights, nil
}
