package contracts

// Holding is one (asset, weight) pair of a portfolio.
// Weights are raw input and need not sum to 1.
type Holding struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// Portfolio is an ordered set of holdings plus a notional value
type Portfolio struct {
	Holdings []Holding `json:"holdings"`
	Value    float64   `json:"value"`
}

// NewPortfolio zips parallel ticker/weight slices. Extra entries on either side are ignored.
func NewPortfolio(tickers []string, weights []float64, value float64) Portfolio {
	n := min(len(tickers), len(weights))
	holdings := make([]Holding, 0, n)
	for i := 0; i < n; i++ {
		holdings = append(holdings, Holding{Ticker: tickers[i], Weight: weights[i]})
	}
	return Portfolio{Holdings: holdings, Value: value}
}

// TotalWeight returns the sum of all raw weights
func (p Portfolio) TotalWeight() float64 {
	total := 0.0
	for _, h := range p.Holdings {
		total += h.Weight
	}
	return total
}

// Count returns the number of holdings
func (p Portfolio) Count() int {
	return len(p.Holdings)
}

// Tickers returns holding tickers in input order
func (p Portfolio) Tickers() []string {
	out := make([]string, len(p.Holdings))
	for i, h := range p.Holdings {
		out[i] = h.Ticker
	}
	return out
}

// Weight finds the raw weight of the first holding with the given ticker
func (p Portfolio) Weight(ticker string) (float64, bool) {
	for _, h := range p.Holdings {
		if h.Ticker == ticker {
			return h.Weight, true
		}
	}
	return 0, false
}

// Positions maps tickers to share counts bought with a given capital
type Positions struct {
	Positions map[string]Float  `json:"positions"`
	Skipped   map[string]string `json:"skipped,omitempty"`
}

// AddSkipped records why a ticker has no position
func (p *Positions) AddSkipped(ticker, reason string) {
	if p.Skipped == nil {
		p.Skipped = make(map[string]string)
	}
	p.Skipped[ticker] = reason
}
