package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/carson-networks/account-lifecycle-server/internal/coldstore"
	"github.com/carson-networks/account-lifecycle-server/internal/metrics"
)

func TestRouter_StatusAndMetrics(t *testing.T) {
	log, _ := test.NewNullLogger()
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheusCollector("lifecycle")
	assert.NoError(t, collector.Register(reg))
	collector.RecordTransferDegraded()

	rest := &Rest{Logger: log, ColdStore: coldstore.NewMemoryGateway(), Gatherer: reg}
	router := rest.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"coldStore":"reachable"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lifecycle_")
}

func TestRouter_UnknownAccountIDIsNotFound(t *testing.T) {
	log, _ := test.NewNullLogger()
	rest := &Rest{Logger: log, ColdStore: coldstore.NewMemoryGateway(), Gatherer: prometheus.NewRegistry()}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/accounts/not-a-uuid", nil)
	req.Header.Set("X-Principal-Role", "admin")
	req.Header.Set("X-Principal-Id", "7b0f4a3e-1c36-4b6e-9a57-3f0e7b3c9d11")
	rest.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
