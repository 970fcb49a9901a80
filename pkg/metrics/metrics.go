package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riskscope_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	VaREngineCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "riskscope_var_engine_calls_total",
		Help: "VaR/ES engine invocations by engine and outcome.",
	}, []string{"engine", "outcome"})

	VaREngineDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riskscope_var_engine_duration_seconds",
		Help:    "VaR/ES engine latency.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"engine"})

	DegenerateEstimates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "riskscope_degenerate_estimates_total",
		Help: "Tail-risk estimates that fell back to the zero result.",
	}, []string{"reason"})

	RiskReports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "riskscope_risk_reports_total",
		Help: "Portfolio risk computations by outcome.",
	}, []string{"outcome"})

	SkippedHoldings = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "riskscope_skipped_holdings_total",
		Help: "Holdings left out of a risk report because no data resolved.",
	})

	ScenarioRunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riskscope_scenario_run_duration_seconds",
		Help:    "Scenario report latency by scenario and outcome.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"scenario", "outcome"})

	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "riskscope_simulation_duration_seconds",
		Help:    "Monte Carlo path generation latency.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	SimulatedPaths = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "riskscope_simulated_paths_total",
		Help: "Total Monte Carlo paths generated.",
	})

	MarketDataFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "riskscope_marketdata_fetches_total",
		Help: "Upstream price history fetches by source and outcome.",
	}, []string{"source", "outcome"})

	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "riskscope_cache_lookups_total",
		Help: "Price history cache lookups by tier and result.",
	}, []string{"tier", "result"})
)

var initOnce sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestDuration,
			VaREngineCalls,
			VaREngineDuration,
			DegenerateEstimates,
			RiskReports,
			SkippedHoldings,
			ScenarioRunDuration,
			SimulationDuration,
			SimulatedPaths,
			MarketDataFetches,
			CacheLookups,
		)
	})
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
