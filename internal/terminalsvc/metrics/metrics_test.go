package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.IncrementTerminalsAdded(1)
	m.IncrementTerminalsAdded(2)
	m.IncrementAddFailures("invalid_reference")
	m.ObserveDispatch("GET", "200")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.TerminalsAdded))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.TerminalsStored))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AddFailures.WithLabelValues("invalid_reference")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DispatchRequests.WithLabelValues("GET", "200")))
}

func TestIndependentRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		New()
		New()
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.IncrementTerminalsAdded(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "terminal_service_terminals_added_total 1")
}
