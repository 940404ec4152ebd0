package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorefrontMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewStorefrontMetrics(registry, logger.Nop()).(*storefrontMetrics)

	m.IncOrderCreated("product")
	m.IncOrderCreated("product")
	m.IncOrderCreated("service")
	m.IncOrderStatusChanged("Pending", "Confirmed")
	m.IncCompensationFailed()
	m.IncCustomerRegistered()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreated.WithLabelValues("product")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCreated.WithLabelValues("service")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orderStatusChanges.WithLabelValues("Pending", "Confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.compensationFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.customersCreated))
}

func TestStorefrontMetrics_Exposition(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewStorefrontMetrics(registry, logger.Nop())

	m.IncEventPublishFailed("order.created")

	expected := `
# HELP storefront_event_publish_failures_total The total number of events that could not be published
# TYPE storefront_event_publish_failures_total counter
storefront_event_publish_failures_total{event_type="order.created"} 1
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "storefront_event_publish_failures_total")
	require.NoError(t, err)
}

func TestStorefrontMetrics_HTTP(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewStorefrontMetrics(registry, logger.Nop()).(*storefrontMetrics)

	m.ObserveHTTPRequest("GET", "/api/orders", 200, 15*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/orders", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/orders", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}

func TestSystemMetrics_RecordAndStop(t *testing.T) {
	registry := prometheus.NewRegistry()
	sm := NewSystemMetrics(registry, logger.Nop()).(*systemMetrics)

	sm.StartRecording(time.Hour)
	assert.Greater(t, testutil.ToFloat64(sm.goroutines), 0.0)
	assert.Greater(t, testutil.ToFloat64(sm.memorySystem), 0.0)

	sm.Stop()
	sm.Stop()
}
