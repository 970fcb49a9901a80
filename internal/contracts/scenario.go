package contracts

// AssetImpact is one row of the all-assets reference view
type AssetImpact struct {
	Asset  string `json:"asset"`
	Impact Float  `json:"impact"`
}

// Projection holds per-day percentile trajectories truncated to the display horizon
type Projection struct {
	Median []Float `json:"median"`
	P10    []Float `json:"p10"`
	P90    []Float `json:"p90"`
}

// ScenarioReport is the response of a scenario run.
// Field names follow the browser client's camelCase contract.
type ScenarioReport struct {
	RunID              string           `json:"runId"`
	ScenarioID         string           `json:"scenarioId"`
	AssetImpact        map[string]Float `json:"assetImpact"`
	ExpectedLoss       Float            `json:"expectedLoss"`
	ExpectedLossPct    Float            `json:"expectedLossPct"`
	MaxDrawdown        Float            `json:"maxDrawdown"`
	VaR95              Float            `json:"VaR95"`
	ScenarioResults    []AssetImpact    `json:"scenarioResults"`
	RecoveryTimeMonths Float            `json:"recoveryTimeMonths"`
	Projection         Projection       `json:"projection"`
}

// ScenarioInfo describes one catalog entry
type ScenarioInfo struct {
	ID      string           `json:"id"`
	Factors map[string]Float `json:"factors"`
}

// AssetInfo describes one asset of the universe
type AssetInfo struct {
	ID     string           `json:"id"`
	Kind   string           `json:"kind"`
	Symbol string           `json:"symbol"`
	Beta   map[string]Float `json:"beta,omitempty"`
}
