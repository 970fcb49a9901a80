package contracts

// RiskMetrics is the wire form of one tail-risk estimate.
// Degenerate estimates carry only the four core fields plus Error.
type RiskMetrics struct {
	VaR         Float  `json:"var"`
	ES          Float  `json:"es"`
	Sharpe      Float  `json:"sharpe"`
	MaxDrawdown Float  `json:"max_drawdown"`
	Volatility  *Float `json:"volatility,omitempty"`
	Beta        *Float `json:"beta,omitempty"`
	Error       string `json:"error,omitempty"`
}

// DatedValue is one point of a dated curve
type DatedValue struct {
	Date  string `json:"date"`
	Value Float  `json:"value"`
}

// DrawdownPoint is one point of a drawdown curve
type DrawdownPoint struct {
	Date     string `json:"date"`
	Drawdown Float  `json:"drawdown"`
}

// HistogramBin is one equal-width return bucket labelled by its left edge
type HistogramBin struct {
	Bin   string `json:"bin"`
	Count int    `json:"count"`
}

// ReturnAnalytics summarizes the shape of a return series
type ReturnAnalytics struct {
	BestDay           Float           `json:"best_day"`
	WorstDay          Float           `json:"worst_day"`
	CumulativeReturns []DatedValue    `json:"cumulative_returns"`
	DrawdownSeries    []DrawdownPoint `json:"drawdown_series"`
	ReturnHistogram   []HistogramBin  `json:"return_histogram"`
}

// TodayChange is the P&L implied by the latest single-day return
type TodayChange struct {
	ChangeAbs Float `json:"change_abs"`
	ChangePct Float `json:"change_pct"`
}

// RiskReport is the full response of a portfolio risk computation
type RiskReport struct {
	RunID              string                     `json:"run_id"`
	AsOf               string                     `json:"as_of"`
	Portfolio          RiskMetrics                `json:"portfolio"`
	Assets             map[string]RiskMetrics     `json:"assets"`
	PortfolioAnalytics ReturnAnalytics            `json:"portfolio_analytics"`
	AssetsAnalytics    map[string]ReturnAnalytics `json:"assets_analytics"`
	TodayChange        TodayChange                `json:"today_change"`
	ResolvedWeights    map[string]Float           `json:"resolved_weights"`
	Skipped            map[string]string          `json:"skipped,omitempty"`
}
