package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/pkg/httputil"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/redis"
)

func testHTTP() *httputil.Client {
	return httputil.New(logger.Nop()).DisableRetry()
}

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestLookup(t *testing.T) {
	a, ok := Lookup("US_HPI")
	require.True(t, ok)
	assert.Equal(t, KindRealEstate, a.Kind)
	assert.Equal(t, "CSUSHPINSA", a.Symbol)

	btc, ok := Lookup("BTC")
	require.True(t, ok)
	assert.Equal(t, "BTC-USD", btc.Symbol)
	assert.True(t, btc.Kind.Yahoo())

	_, ok = Lookup("DOGE")
	assert.False(t, ok)
	assert.Len(t, Assets(), 19)
}

const chartBody = `{
  "chart": {
    "result": [{
      "timestamp": [1704205800, 1704292200, 1704378600],
      "indicators": {
        "quote": [{"close": [185.6, 184.2, 181.9]}],
        "adjclose": [{"adjclose": [184.9, null, 181.2]}]
      }
    }],
    "error": null
  }
}`

func TestYahooFetchDaily(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		fmt.Fprint(w, chartBody)
	}))
	defer server.Close()

	client := NewYahooClient(testHTTP(), server.URL, logger.Nop())
	prices, err := client.FetchDaily(context.Background(), "BTC-USD", start)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/BTC-USD", gotPath)
	assert.Contains(t, gotQuery, "interval=1d")
	assert.Contains(t, gotQuery, fmt.Sprintf("period1=%d", start.Unix()))

	require.Len(t, prices, 2)
	assert.Equal(t, 184.9, prices[0].Close)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), prices[0].Date)
	assert.Equal(t, 181.2, prices[1].Close)
}

func TestYahooErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		noData bool
	}{
		{"not found", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, true},
		{"chart error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Bad","description":"delisted"}}}`, true},
		{"empty result", http.StatusOK, `{"chart":{"result":[]}}`, true},
		{"server error", http.StatusInternalServerError, `oops`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			_, err := NewYahooClient(testHTTP(), server.URL, logger.Nop()).FetchDaily(context.Background(), "X", start)
			require.Error(t, err)
			assert.Equal(t, tt.noData, errors.Is(err, ErrNoData))
		})
	}
}

func TestFREDFetchDaily(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/fred/series/observations", r.URL.Path)
		fmt.Fprint(w, `{"observations":[
			{"date":"2024-01-01","value":"300.0"},
			{"date":"2024-01-02","value":"."},
			{"date":"2024-01-04","value":"303.0"}
		]}`)
	}))
	defer server.Close()

	client := NewFREDClient(testHTTP(), server.URL, "secret", logger.Nop())
	prices, err := client.FetchDaily(context.Background(), "CSUSHPINSA", start)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "series_id=CSUSHPINSA")
	assert.Contains(t, gotQuery, "api_key=secret")
	assert.Contains(t, gotQuery, "file_type=json")

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}
	assert.Equal(t, []float64{300, 300, 300, 303}, closes)
}

func TestFREDNoObservations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"observations":[{"date":"2024-01-01","value":"."}]}`)
	}))
	defer server.Close()

	_, err := NewFREDClient(testHTTP(), server.URL, "k", logger.Nop()).FetchDaily(context.Background(), "X", start)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestForwardFill(t *testing.T) {
	in := []returns.Price{
		{Date: start, Close: 1},
		{Date: start.AddDate(0, 0, 3), Close: 2},
	}
	out := ForwardFill(in)

	require.Len(t, out, 4)
	assert.Equal(t, 1.0, out[2].Close)
	assert.Equal(t, 2.0, out[3].Close)
	assert.Equal(t, start.AddDate(0, 0, 1), out[1].Date)

	assert.Len(t, ForwardFill(in[:1]), 1)
}

// fetcherFunc adapts a function to DailyFetcher
type fetcherFunc func(ctx context.Context, symbol string, start time.Time) ([]returns.Price, error)

func (f fetcherFunc) FetchDaily(ctx context.Context, symbol string, start time.Time) ([]returns.Price, error) {
	return f(ctx, symbol, start)
}

func recordingFetcher(name string, calls *[]string) fetcherFunc {
	return func(ctx context.Context, symbol string, start time.Time) ([]returns.Price, error) {
		*calls = append(*calls, name+":"+symbol)
		return []returns.Price{{Date: start, Close: 1}, {Date: start.AddDate(0, 0, 1), Close: 2}}, nil
	}
}

func TestRouter(t *testing.T) {
	var calls []string
	router := NewRouter(recordingFetcher("yahoo", &calls), recordingFetcher("fred", &calls), start)
	ctx := context.Background()

	_, err := router.History(ctx, "GOLD")
	require.NoError(t, err)
	_, err = router.History(ctx, "US_HPI")
	require.NoError(t, err)
	_, err = router.History(ctx, "BND")
	require.NoError(t, err)

	assert.Equal(t, []string{"yahoo:GLD", "fred:CSUSHPINSA", "yahoo:BND"}, calls)

	_, err = router.History(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrUnknownAsset)
}

func TestRouterPropagatesFetchError(t *testing.T) {
	failing := fetcherFunc(func(ctx context.Context, symbol string, start time.Time) ([]returns.Price, error) {
		return nil, ErrNoData
	})
	router := NewRouter(failing, failing, start)

	_, err := router.History(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestMemorySource(t *testing.T) {
	src := NewMemorySource()
	prices := []returns.Price{{Date: start, Close: 10}}
	src.Put("A", prices)
	prices[0].Close = 99

	got, err := src.History(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got[0].Close)

	_, err = src.History(context.Background(), "B")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCachedSourceDisabledPassesThrough(t *testing.T) {
	mem := NewMemorySource()
	mem.Put("A", []returns.Price{{Date: start, Close: 10}})

	cached := NewCachedSource(mem, redis.NewCache(redis.Disabled(), "test"), time.Hour, start, logger.Nop())

	got, err := cached.History(context.Background(), "A")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = cached.History(context.Background(), "B")
	assert.ErrorIs(t, err, ErrNoData)
	assert.NoError(t, cached.Invalidate(context.Background(), "A"))
}

func TestYahooEscapesSymbol(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, chartBody)
	}))
	defer server.Close()

	_, err := NewYahooClient(testHTTP(), server.URL, logger.Nop()).FetchDaily(context.Background(), "DX-Y.NYB", start)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(gotPath, "/DX-Y.NYB"))
}
