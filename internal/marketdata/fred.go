package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/pkg/httputil"
	"github.com/wonny/riskscope/pkg/logger"
)

// FREDClient fetches economic series observations from FRED
// ⭐ SSOT: FRED API 호출은 이 클라이언트에서만
type FREDClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewFREDClient creates a new FRED client
func NewFREDClient(httpClient *httputil.Client, baseURL, apiKey string, log *logger.Logger) *FREDClient {
	return &FREDClient{
		httpClient: httpClient,
		logger:     log.WithComponent("fred"),
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchDaily returns the series since start, forward-filled to every calendar day
func (c *FREDClient) FetchDaily(ctx context.Context, seriesID string, start time.Time) ([]returns.Price, error) {
	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("observation_start", start.Format("2006-01-02"))

	fullURL := fmt.Sprintf("%s/fred/series/observations?%s", c.baseURL, params.Encode())

	var resp observationsResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		if httputil.IsNotFound(err) {
			return nil, fmt.Errorf("%w: fred %s", ErrNoData, seriesID)
		}
		return nil, fmt.Errorf("fred %s: %w", seriesID, err)
	}

	var obs []returns.Price
	for _, o := range resp.Observations {
		// FRED marks missing values with "."
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		d, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			continue
		}
		obs = append(obs, returns.Price{Date: d, Close: v})
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: fred %s", ErrNoData, seriesID)
	}

	daily := ForwardFill(returns.Clean(obs))
	c.logger.WithFields(map[string]interface{}{
		"series":       seriesID,
		"observations": len(obs),
		"days":         len(daily),
	}).Debug("Fetched series")
	return daily, nil
}

// ForwardFill resamples ascending prices to one row per calendar day,
// carrying the last observation forward
func ForwardFill(prices []returns.Price) []returns.Price {
	if len(prices) < 2 {
		return prices
	}

	first, last := prices[0].Date, prices[len(prices)-1].Date
	out := make([]returns.Price, 0, int(last.Sub(first).Hours()/24)+1)

	j := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		for j+1 < len(prices) && !prices[j+1].Date.After(d) {
			j++
		}
		out = append(out, returns.Price{Date: d, Close: prices[j].Close})
	}
	return out
}
