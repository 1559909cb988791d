package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/campusid/auth/internal/auth/metrics"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.Login(metrics.LoginSuccess)
	m.TokenIssued(metrics.TokenAccess)
	m.RefreshEvicted(3)

	h := m.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCounters(t *testing.T) {
	m := metrics.New()

	m.Login(metrics.LoginSuccess)
	m.Login(metrics.LoginInvalidCredentials)
	m.Login(metrics.LoginInvalidCredentials)
	m.TokenIssued(metrics.TokenRefresh)
	m.RefreshEvicted(4)
	m.RefreshEvicted(0)

	expected := `
# HELP campus_auth_logins_total Login attempts by outcome.
# TYPE campus_auth_logins_total counter
campus_auth_logins_total{outcome="invalid_credentials"} 2
campus_auth_logins_total{outcome="success"} 1
# HELP campus_auth_refresh_evictions_total Expired refresh tokens removed by housekeeping.
# TYPE campus_auth_refresh_evictions_total counter
campus_auth_refresh_evictions_total 4
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"campus_auth_logins_total", "campus_auth_refresh_evictions_total"))
}

func TestHTTPMiddlewareAndHandler(t *testing.T) {
	m := metrics.New()

	h := m.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/auth/admin/users/x", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `campus_auth_http_requests_total{code="404",method="DELETE"} 1`)
	require.Contains(t, rec.Body.String(), `campus_auth_http_request_duration_seconds_count{method="DELETE"} 1`)
}
