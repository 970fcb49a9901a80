package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/pkg/httputil"
	"github.com/wonny/riskscope/pkg/logger"
)

// YahooClient fetches daily adjusted closes from the Yahoo chart API
// ⭐ SSOT: Yahoo 가격 API 호출은 이 클라이언트에서만
type YahooClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewYahooClient creates a new Yahoo client
func NewYahooClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *YahooClient {
	return &YahooClient{
		httpClient: httpClient,
		logger:     log.WithComponent("yahoo"),
		baseURL:    baseURL,
		now:        time.Now,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily returns adjusted daily closes for symbol since start
func (c *YahooClient) FetchDaily(ctx context.Context, symbol string, start time.Time) ([]returns.Price, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprint(start.Unix()))
	params.Set("period2", fmt.Sprint(c.now().Unix()))
	params.Set("interval", "1d")
	params.Set("events", "div,split")
	params.Set("includeAdjustedClose", "true")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		if httputil.IsNotFound(err) {
			return nil, fmt.Errorf("%w: yahoo %s", ErrNoData, symbol)
		}
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}

	prices, err := parseChart(resp)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(prices),
	}).Debug("Fetched prices")
	return prices, nil
}

// parseChart prefers adjusted closes and skips null entries
func parseChart(resp chartResponse) ([]returns.Price, error) {
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoData, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	r := resp.Chart.Result[0]
	var closes []*float64
	switch {
	case len(r.Indicators.AdjClose) > 0:
		closes = r.Indicators.AdjClose[0].AdjClose
	case len(r.Indicators.Quote) > 0:
		closes = r.Indicators.Quote[0].Close
	}

	prices := make([]returns.Price, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		prices = append(prices, returns.Price{
			Date:  returns.Day(time.Unix(ts, 0)),
			Close: *closes[i],
		})
	}
	if len(prices) == 0 {
		return nil, ErrNoData
	}
	return prices, nil
}
