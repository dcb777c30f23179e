package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ItemCreated()
	m.ItemCreated()
	m.TransferProposed()
	m.TransferResolved("accepted")
	m.TransferResolved("rejected")
	m.TransferResolved("accepted")
	m.NotificationFailed()
	m.OperationFailed("propose")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.itemsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transfersProposed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transfersResolved.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transfersResolved.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationErrors.WithLabelValues("propose")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ItemCreated()
	m.TransferProposed()
	m.TransferResolved("accepted")
	m.NotificationFailed()
	m.OperationFailed("x")
	m.ObserveRequest("GET", 200, time.Millisecond)
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", 200, 10*time.Millisecond)
	m.ItemCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `custody_http_requests_total{code="200",method="GET"} 1`)
	assert.Contains(t, string(body), "custody_items_created_total 1")
	assert.Contains(t, string(body), "custody_http_request_duration_seconds_bucket")
}
