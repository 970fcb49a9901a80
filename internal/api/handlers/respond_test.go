package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskscope/internal/factor"
	"github.com/wonny/riskscope/internal/portfolio"
	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/internal/simulation"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad body", fmt.Errorf("%w: x", errBadBody), http.StatusBadRequest},
		{"invalid request", fmt.Errorf("%w: dup", portfolio.ErrInvalidRequest), http.StatusBadRequest},
		{"invalid params", fmt.Errorf("%w: value", simulation.ErrInvalidParams), http.StatusBadRequest},
		{"unknown scenario", fmt.Errorf("%w: moon-landing", factor.ErrUnknownScenario), http.StatusNotFound},
		{"no valid assets", portfolio.ErrNoValidAssets, http.StatusUnprocessableEntity},
		{"no overlap", fmt.Errorf("align: %w", returns.ErrNoOverlappingHistory), http.StatusUnprocessableEntity},
		{"empty dataset", returns.ErrEmptyDataset, http.StatusUnprocessableEntity},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"tickers":["AAPL"],"weights":[1],"portfolio_value":100}`, ""},
		{"empty body", ``, "empty body"},
		{"malformed", `{"tickers":`, "invalid request body"},
		{"missing tickers", `{"weights":[1],"portfolio_value":100}`, "tickers failed required"},
		{"empty tickers", `{"tickers":[],"weights":[1],"portfolio_value":100}`, "tickers failed min"},
		{"blank ticker", `{"tickers":[""],"weights":[1],"portfolio_value":100}`, "tickers[0] failed required"},
		{"zero value", `{"tickers":["AAPL"],"weights":[1],"portfolio_value":0}`, "portfolio_value failed gt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/risk", strings.NewReader(tt.body))

			var req RiskRequest
			err := decodeJSON(w, r, &req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, []string{"AAPL"}, req.Tickers)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errBadBody)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRespondFailure_HidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	respondFailure(w, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestScenarioRequest_ToPortfolioIsSorted(t *testing.T) {
	req := ScenarioRequest{
		ScenarioID:     "market-crash",
		Portfolio:      map[string]float64{"TSLA": 0.2, "AAPL": 0.5, "GOOG": 0.3},
		PortfolioValue: 1000,
	}

	p := req.toPortfolio()
	assert.Equal(t, []string{"AAPL", "GOOG", "TSLA"}, p.Tickers())
	w, ok := p.Weight("GOOG")
	require.True(t, ok)
	assert.Equal(t, 0.3, w)
	assert.Equal(t, 1000.0, p.Value)
}

func TestAssetUniverse(t *testing.T) {
	assets := AssetUniverse(factor.Default())
	require.NotEmpty(t, assets)

	byID := make(map[string]int, len(assets))
	for i, a := range assets {
		byID[a.ID] = i
	}

	aapl := assets[byID["AAPL"]]
	assert.Equal(t, "equity_etf", aapl.Kind)
	assert.Len(t, aapl.Beta, factor.NumFactors)

	hpi := assets[byID["US_HPI"]]
	assert.Equal(t, "CSUSHPINSA", hpi.Symbol)
}
