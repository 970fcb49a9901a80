package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/wonny/riskscope/internal/chart"
	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/pkg/logger"
)

// ScenarioRunner runs one named scenario against a portfolio
type ScenarioRunner interface {
	Run(ctx context.Context, scenarioID string, p contracts.Portfolio) (*contracts.ScenarioReport, error)
}

// ScenarioHandler handles scenario simulation endpoints
type ScenarioHandler struct {
	runner ScenarioRunner
	logger *logger.Logger
}

// NewScenarioHandler creates a new scenario handler
func NewScenarioHandler(runner ScenarioRunner, log *logger.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		runner: runner,
		logger: log.WithComponent("api.scenario"),
	}
}

// ScenarioRequest is the body of POST /run-scenario.
// Keys are camelCase to match the browser client.
type ScenarioRequest struct {
	ScenarioID     string             `json:"scenarioId" validate:"required"`
	Portfolio      map[string]float64 `json:"portfolio" validate:"required,min=1"`
	PortfolioValue float64            `json:"portfolioValue" validate:"gt=0"`
}

// toPortfolio orders holdings by ticker so runs do not depend on map iteration
func (req ScenarioRequest) toPortfolio() contracts.Portfolio {
	tickers := make([]string, 0, len(req.Portfolio))
	for t := range req.Portfolio {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	weights := make([]float64, len(tickers))
	for i, t := range tickers {
		weights[i] = req.Portfolio[t]
	}
	return contracts.NewPortfolio(tickers, weights, req.PortfolioValue)
}

// run decodes the request and runs the scenario, writing any failure itself
func (h *ScenarioHandler) run(w http.ResponseWriter, r *http.Request) (*contracts.ScenarioReport, bool) {
	var req ScenarioRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFailure(w, err)
		return nil, false
	}

	report, err := h.runner.Run(r.Context(), req.ScenarioID, req.toPortfolio())
	if err != nil {
		logger.FromContext(r.Context(), h.logger).WithError(err).WithField("scenario", req.ScenarioID).Warn("Scenario run failed")
		respondFailure(w, err)
		return nil, false
	}
	return report, true
}

// RunScenario simulates a portfolio under a stress scenario
// POST /run-scenario
func (h *ScenarioHandler) RunScenario(w http.ResponseWriter, r *http.Request) {
	report, ok := h.run(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// RunScenarioChart renders the projection bands of a scenario run as PNG
// POST /run-scenario/chart
func (h *ScenarioHandler) RunScenarioChart(w http.ResponseWriter, r *http.Request) {
	report, ok := h.run(w, r)
	if !ok {
		return
	}

	png, err := chart.Projection(report)
	if err != nil {
		logger.FromContext(r.Context(), h.logger).WithError(err).WithField("scenario", report.ScenarioID).Error("Failed to render projection")
		respondError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Run-Id", report.RunID)
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
