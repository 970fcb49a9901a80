package portfolio

import (
	"context"
	"fmt"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/returns"
)

// Positions converts capital into share counts at the latest close:
// shares = capital * weight / price. Weights are used as given.
func (a *Aggregator) Positions(ctx context.Context, tickers []string, weights []float64, capital float64) (*contracts.Positions, error) {
	if err := a.config.Constraints.Check(tickers, weights, capital); err != nil {
		return nil, err
	}

	out := &contracts.Positions{Positions: make(map[string]contracts.Float, len(tickers))}
	for i, ticker := range tickers {
		prices, err := a.source.History(ctx, ticker)
		if err != nil {
			a.logger.WithError(err).WithField("ticker", ticker).Warn("no price for position")
			out.AddSkipped(ticker, err.Error())
			continue
		}
		clean := returns.Clean(prices)
		if len(clean) == 0 {
			out.AddSkipped(ticker, returns.ErrEmptyDataset.Error())
			continue
		}
		last := clean[len(clean)-1]
		out.Positions[ticker] = contracts.Float(capital * weights[i] / last.Close)
	}

	if len(out.Positions) == 0 {
		return nil, fmt.Errorf("%w: no prices for any ticker", ErrNoValidAssets)
	}
	return out, nil
}
