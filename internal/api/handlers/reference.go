package handlers

import (
	"net/http"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/factor"
	"github.com/wonny/riskscope/internal/marketdata"
	"github.com/wonny/riskscope/internal/scenario"
)

// ReferenceHandler serves the static reference tables
type ReferenceHandler struct {
	model *factor.Model
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(model *factor.Model) *ReferenceHandler {
	return &ReferenceHandler{model: model}
}

// Scenarios lists the scenario catalog
// GET /api/scenarios
func (h *ReferenceHandler) Scenarios(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, scenario.Catalog(h.model))
}

// Assets lists the asset universe with factor betas where the model has them
// GET /api/assets
func (h *ReferenceHandler) Assets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, AssetUniverse(h.model))
}

// AssetUniverse joins the metadata table with the beta table
func AssetUniverse(model *factor.Model) []contracts.AssetInfo {
	assets := marketdata.Assets()
	out := make([]contracts.AssetInfo, 0, len(assets))
	for _, a := range assets {
		info := contracts.AssetInfo{
			ID:     a.ID,
			Kind:   string(a.Kind),
			Symbol: a.Symbol,
		}
		if beta, err := model.BetaOf(a.ID); err == nil {
			info.Beta = make(map[string]contracts.Float, factor.NumFactors)
			for name, x := range beta.Map() {
				info.Beta[name] = contracts.Float(x)
			}
		}
		out = append(out, info)
	}
	return out
}
