package marketdata

import (
	"context"
	"errors"

	"github.com/wonny/riskscope/internal/returns"
)

var (
	ErrUnknownAsset    = errors.New("unknown asset")
	ErrNoData          = errors.New("no price data")
	ErrUnsupportedKind = errors.New("unsupported instrument kind")
)

// Kind is an instrument class; it selects the upstream source
type Kind string

const (
	KindEquityETF  Kind = "equity_etf"
	KindBondETF    Kind = "bond_etf"
	KindIntlEquity Kind = "intl_equity"
	KindTargetDate Kind = "target_date"
	KindRealEstate Kind = "real_estate"
)

// Yahoo reports whether the kind is priced from Yahoo daily closes
func (k Kind) Yahoo() bool {
	switch k {
	case KindEquityETF, KindBondETF, KindIntlEquity, KindTargetDate:
		return true
	}
	return false
}

// Asset maps an asset id to its upstream descriptor
type Asset struct {
	ID     string
	Kind   Kind
	Symbol string // Yahoo ticker or FRED series id
}

// Source supplies ascending daily prices for an asset id
type Source interface {
	History(ctx context.Context, assetID string) ([]returns.Price, error)
}

// 자산 메타데이터 (불변)
var assets = []Asset{
	{"AAPL", KindEquityETF, "AAPL"},
	{"GOOG", KindEquityETF, "GOOG"},
	{"TSLA", KindEquityETF, "TSLA"},
	{"AMZN", KindEquityETF, "AMZN"},
	{"VOO", KindEquityETF, "VOO"},
	{"SPY", KindEquityETF, "SPY"},
	{"BND", KindBondETF, "BND"},
	{"AGG", KindBondETF, "AGG"},
	{"VXUS", KindIntlEquity, "VXUS"},
	{"VTIVX", KindTargetDate, "VTIVX"},
	{"US_HPI", KindRealEstate, "CSUSHPINSA"},
	{"BTC", KindEquityETF, "BTC-USD"},
	{"ETH", KindEquityETF, "ETH-USD"},
	{"SOL", KindEquityETF, "SOL-USD"},
	{"USD", KindEquityETF, "DX-Y.NYB"},
	{"GOLD", KindEquityETF, "GLD"},
	{"SILVER", KindEquityETF, "SLV"},
	{"CASH", KindEquityETF, "BIL"},
	{"OIL", KindEquityETF, "USO"},
}

var assetIndex = func() map[string]Asset {
	m := make(map[string]Asset, len(assets))
	for _, a := range assets {
		m[a.ID] = a
	}
	return m
}()

// Lookup returns the descriptor of an asset id
func Lookup(id string) (Asset, bool) {
	a, ok := assetIndex[id]
	return a, ok
}

// Assets returns every known asset in table order
func Assets() []Asset {
	return append([]Asset(nil), assets...)
}
