package factor

// Beta table order: market, rates, inflation, growth, liquidity, tech, risk_on
var defaultBetas = []Entry{
	{"AAPL", Vector{1.2, 0.8, -0.3, -0.2, 0.6, 1.1, 0.4}},
	{"GOOG", Vector{1.1, 0.7, -0.2, -0.1, 0.5, 1.0, 0.3}},
	{"TSLA", Vector{1.6, 1.2, -0.1, -0.1, 0.7, 1.5, 0.6}},
	{"AMZN", Vector{1.3, 0.9, -0.2, -0.2, 0.6, 1.2, 0.4}},
	{"VOO", Vector{1.0, 0.6, -0.1, 0.0, 0.3, 0.9, 0.2}},
	{"SPY", Vector{1.0, 0.6, -0.1, 0.0, 0.3, 0.9, 0.2}},

	// bonds
	{"BND", Vector{0.1, -0.05, 0.2, 0.1, 0, 0, 0}},
	{"AGG", Vector{0.1, -0.03, 0.15, 0.05, 0, 0, 0}},
	{"TLT", Vector{0.0, -0.02, 0.2, 0.1, 0, 0, 0}},
	{"VTIVX", Vector{0.0, -0.01, 0.1, 0.05, 0, 0, 0}},

	{"VXUS", Vector{0.9, 0.5, -0.1, 0.0, 0.4, 0.8, 0.1}},

	// commodities
	{"GLD", Vector{0, 0, 1.3, 0.5, 0, 0, 0}},
	{"SLV", Vector{0, 0, 1.1, 0.4, 0, 0, 0}},
	{"USO", Vector{0, 0, 0.9, 0.3, 0, 0, 0}},
	{"DBC", Vector{0.1, 0, 1.0, 0.3, 0, 0, 0}},

	{"CASH", Vector{}},
	{"USD", Vector{}},

	// crypto
	{"BTC", Vector{2.0, 1.8, 0.0, 0.1, 0.2, 1.3, 0.8}},
	{"ETH", Vector{2.2, 1.7, 0.0, 0.2, 0.3, 1.4, 0.7}},
	{"SOL", Vector{2.5, 1.9, 0.1, 0.3, 0.4, 1.6, 0.9}},
}

var defaultScenarios = []Entry{
	{"market-crash", Vector{-0.20, +0.05, +0.05, +0.02, -0.05, +0.10, 0.00}},
	{"tech-boom", Vector{+0.10, +0.25, -0.05, +0.01, +0.05, -0.08, -0.02}},
	{"inflation-spike", Vector{-0.08, -0.10, +0.35, +0.25, +0.10, +0.12, -0.05}},
	{"recession", Vector{-0.15, -0.10, -0.05, -0.10, -0.15, +0.20, +0.02}},
	{"bull-market", Vector{+0.18, +0.20, -0.02, +0.01, +0.10, -0.08, -0.05}},
}

// Default returns the built-in beta table and scenario catalog
func Default() *Model {
	m, err := New(defaultBetas, defaultScenarios)
	if err != nil {
		panic(err)
	}
	return m
}
