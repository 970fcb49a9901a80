package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/portfolio"
	"github.com/wonny/riskscope/pkg/logger"
)

// RiskService is the portfolio capability behind the risk endpoints
type RiskService interface {
	ComputeRisk(ctx context.Context, req portfolio.Request) (*contracts.RiskReport, error)
	Positions(ctx context.Context, tickers []string, weights []float64, capital float64) (*contracts.Positions, error)
}

// RiskHandler handles portfolio risk endpoints
// ⭐ SSOT: 리스크 API 핸들러는 이 구조체에서만
type RiskHandler struct {
	service RiskService
	logger  *logger.Logger
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(service RiskService, log *logger.Logger) *RiskHandler {
	return &RiskHandler{
		service: service,
		logger:  log.WithComponent("api.risk"),
	}
}

// RiskRequest is the body of POST /risk
type RiskRequest struct {
	Tickers        []string  `json:"tickers" validate:"required,min=1,dive,required"`
	Weights        []float64 `json:"weights" validate:"required,min=1"`
	PortfolioValue float64   `json:"portfolio_value" validate:"gt=0"`
	CashFlowToday  float64   `json:"cash_flow_today"`
}

// ComputeRisk returns the risk report of a weighted basket
// POST /risk
func (h *RiskHandler) ComputeRisk(w http.ResponseWriter, r *http.Request) {
	var req RiskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFailure(w, err)
		return
	}

	report, err := h.service.ComputeRisk(r.Context(), portfolio.Request{
		Tickers:        req.Tickers,
		Weights:        req.Weights,
		PortfolioValue: req.PortfolioValue,
		CashFlowToday:  req.CashFlowToday,
	})
	if err != nil {
		logger.FromContext(r.Context(), h.logger).WithError(err).WithField("tickers", req.Tickers).Warn("Risk computation failed")
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// PositionsRequest is the body of POST /api/positions
type PositionsRequest struct {
	Tickers []string  `json:"tickers" validate:"required,min=1,dive,required"`
	Weights []float64 `json:"weights" validate:"required,min=1"`
	Capital float64   `json:"capital" validate:"gt=0"`
}

// Positions converts capital into share counts
// POST /api/positions
func (h *RiskHandler) Positions(w http.ResponseWriter, r *http.Request) {
	var req PositionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFailure(w, err)
		return
	}

	positions, err := h.service.Positions(r.Context(), req.Tickers, req.Weights, req.Capital)
	if err != nil {
		logger.FromContext(r.Context(), h.logger).WithError(err).Warn("Positions failed")
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, positions)
}
