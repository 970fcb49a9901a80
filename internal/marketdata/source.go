package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/pkg/metrics"
)

// DailyFetcher returns daily prices for an upstream symbol since start
type DailyFetcher interface {
	FetchDaily(ctx context.Context, symbol string, start time.Time) ([]returns.Price, error)
}

// Router resolves asset ids through the metadata table and dispatches
// to the upstream serving the instrument kind
type Router struct {
	yahoo DailyFetcher
	fred  DailyFetcher
	start time.Time
}

// NewRouter creates a source over the Yahoo and FRED fetchers
func NewRouter(yahoo, fred DailyFetcher, start time.Time) *Router {
	return &Router{yahoo: yahoo, fred: fred, start: start}
}

// History implements Source
func (r *Router) History(ctx context.Context, assetID string) ([]returns.Price, error) {
	asset, ok := Lookup(assetID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, assetID)
	}

	var (
		prices []returns.Price
		err    error
		source string
	)
	switch {
	case asset.Kind.Yahoo():
		source = "yahoo"
		prices, err = r.yahoo.FetchDaily(ctx, asset.Symbol, r.start)
	case asset.Kind == KindRealEstate:
		source = "fred"
		prices, err = r.fred.FetchDaily(ctx, asset.Symbol, r.start)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedKind, asset.Kind, assetID)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.MarketDataFetches.WithLabelValues(source, outcome).Inc()

	if err != nil {
		return nil, err
	}
	return prices, nil
}
