package factor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// NumFactors is the length of every factor vector
const NumFactors = 7

// Names lists the macro factors in vector order
var Names = [NumFactors]string{
	"market",
	"rates",
	"inflation",
	"growth",
	"liquidity",
	"tech",
	"risk_on",
}

var (
	ErrUnknownAsset    = errors.New("unknown asset")
	ErrUnknownScenario = errors.New("unknown scenario")
)

// Vector is a fixed-length vector over Names.
// Used both as an asset beta and as a scenario shock.
type Vector [NumFactors]float64

// Dot returns the inner product of two vectors
func (v Vector) Dot(o Vector) float64 {
	return floats.Dot(v[:], o[:])
}

// Map keys each component by its factor name
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, NumFactors)
	for i, name := range Names {
		out[name] = v[i]
	}
	return out
}

// Entry is one named vector of a table
type Entry struct {
	ID     string
	Vector Vector
}

// Model holds the beta table and the scenario catalog.
// It is immutable after construction and safe for concurrent reads.
type Model struct {
	betas         map[string]Vector
	assetOrder    []string
	scenarios     map[string]Vector
	scenarioOrder []string
}

// New builds a model from ordered beta and scenario tables.
// Later duplicates of an id are rejected.
func New(betas, scenarios []Entry) (*Model, error) {
	m := &Model{
		betas:     make(map[string]Vector, len(betas)),
		scenarios: make(map[string]Vector, len(scenarios)),
	}

	for _, e := range betas {
		if e.ID == "" {
			return nil, fmt.Errorf("beta table: empty asset id")
		}
		if _, dup := m.betas[e.ID]; dup {
			return nil, fmt.Errorf("beta table: duplicate asset %q", e.ID)
		}
		m.betas[e.ID] = e.Vector
		m.assetOrder = append(m.assetOrder, e.ID)
	}

	for _, e := range scenarios {
		if e.ID == "" {
			return nil, fmt.Errorf("scenario catalog: empty scenario id")
		}
		if _, dup := m.scenarios[e.ID]; dup {
			return nil, fmt.Errorf("scenario catalog: duplicate scenario %q", e.ID)
		}
		m.scenarios[e.ID] = e.Vector
		m.scenarioOrder = append(m.scenarioOrder, e.ID)
	}

	return m, nil
}

// BetaOf returns the factor sensitivities of an asset
func (m *Model) BetaOf(assetID string) (Vector, error) {
	v, ok := m.betas[assetID]
	if !ok {
		return Vector{}, fmt.Errorf("%w: %s", ErrUnknownAsset, assetID)
	}
	return v, nil
}

// Scenario returns the shock vector of a named scenario
func (m *Model) Scenario(scenarioID string) (Vector, error) {
	v, ok := m.scenarios[scenarioID]
	if !ok {
		return Vector{}, fmt.Errorf("%w: %s", ErrUnknownScenario, scenarioID)
	}
	return v, nil
}

// Assets returns every asset of the beta table in table order
func (m *Model) Assets() []string {
	return append([]string(nil), m.assetOrder...)
}

// Scenarios returns every scenario id in catalog order
func (m *Model) Scenarios() []string {
	return append([]string(nil), m.scenarioOrder...)
}

// Impact is the percentage move of an asset under a scenario
type Impact struct {
	Asset  string
	Impact float64
}

// ImpactPct returns 100 * dot(beta, scenario), unrounded
func ImpactPct(beta, scenario Vector) float64 {
	return 100 * beta.Dot(scenario)
}

// AllScenarioImpacts scores every asset of the beta table, in table order.
// Impacts are unrounded; callers round for display.
func (m *Model) AllScenarioImpacts(scenario Vector) []Impact {
	out := make([]Impact, 0, len(m.assetOrder))
	for _, id := range m.assetOrder {
		out = append(out, Impact{Asset: id, Impact: ImpactPct(m.betas[id], scenario)})
	}
	return out
}

// Adjust derives simulator drift and volatility from base parameters.
// Only the market factor (drift, additive) and the rates factor
// (volatility, multiplicative) feed the simulator.
func Adjust(baseMu, baseSigma float64, scenario Vector) (mu, sigma float64) {
	mu = baseMu + scenario[0]
	sigma = baseSigma * (1 + scenario[1])
	return mu, sigma
}
