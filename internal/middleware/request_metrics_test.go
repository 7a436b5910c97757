package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luisthe-dev/myinvite-go/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics(t *testing.T) {
	metricsManager, registry := metrics.NewTestManagerAndRegistry()

	var inFlightDuringHandler float64
	handler := RequestMetrics(metricsManager)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		inFlightDuringHandler = testutil.ToFloat64(metricsManager.GaugeRequests)
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/events", nil))

	// in flight while handling, back to zero afterwards
	assert.Equal(t, float64(1), inFlightDuringHandler)
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.GaugeRequests))

	counted, err := testutil.GatherAndCount(registry, "myinvite_test_request")
	require.NoError(t, err)
	assert.Equal(t, 1, counted)
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metricsManager.CounterRequests.WithLabelValues("GET", "418"),
	))
}
