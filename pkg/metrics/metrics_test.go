package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	Init()
	VaREngineCalls.WithLabelValues("simulated", "ok").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "riskscope_var_engine_calls_total")
}

func TestCounterVecLabels(t *testing.T) {
	before := testutil.ToFloat64(DegenerateEstimates.WithLabelValues("zero_variance"))
	DegenerateEstimates.WithLabelValues("zero_variance").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(DegenerateEstimates.WithLabelValues("zero_variance")))
}
