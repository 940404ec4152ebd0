package metrics

import (
	"strconv"
	"time"

	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric of the service
const Namespace = "storefront"

// StorefrontMetrics интерфейс для бизнес-метрик магазина
type StorefrontMetrics interface {
	IncCustomerRegistered()
	IncOrderCreated(orderType string)
	IncOrderStatusChanged(from, to string)
	ObserveOrderAmount(amount float64, orderType string)
	IncCompensationFailed()
	IncEventPublishFailed(eventType string)
	IncImageRejected(reason string)
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

type storefrontMetrics struct {
	log                *logger.Logger
	customersCreated   prometheus.Counter
	ordersCreated      *prometheus.CounterVec
	orderStatusChanges *prometheus.CounterVec
	orderAmount        *prometheus.HistogramVec
	compensationFailed prometheus.Counter
	eventFailures      *prometheus.CounterVec
	imagesRejected     *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// NewStorefrontMetrics регистрирует метрики магазина в registry
func NewStorefrontMetrics(registry *prometheus.Registry, log *logger.Logger) StorefrontMetrics {
	factory := promauto.With(registry)

	return &storefrontMetrics{
		log: log,
		customersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "customers_registered_total",
			Help:      "The total number of registered customers",
		}),
		ordersCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "orders_created_total",
			Help:      "The total number of created orders",
		}, []string{"order_type"}),
		orderStatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "order_status_changes_total",
			Help:      "The total number of order status changes",
		}, []string{"from", "to"}),
		orderAmount: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "order_amount",
			Help:      "Order total amounts distribution",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
		}, []string{"order_type"}),
		compensationFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "order_compensation_failed_total",
			Help:      "Orders left dangling because the rollback of a failed attach failed",
		}),
		eventFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "event_publish_failures_total",
			Help:      "The total number of events that could not be published",
		}, []string{"event_type"}),
		imagesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "images_rejected_total",
			Help:      "The total number of rejected image uploads",
		}, []string{"reason"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// IncCustomerRegistered увеличивает счетчик зарегистрированных клиентов
func (m *storefrontMetrics) IncCustomerRegistered() {
	m.customersCreated.Inc()
}

// IncOrderCreated увеличивает счетчик созданных заказов
func (m *storefrontMetrics) IncOrderCreated(orderType string) {
	m.ordersCreated.WithLabelValues(orderType).Inc()
}

// IncOrderStatusChanged увеличивает счетчик смен статуса
func (m *storefrontMetrics) IncOrderStatusChanged(from, to string) {
	m.orderStatusChanges.WithLabelValues(from, to).Inc()
}

// ObserveOrderAmount записывает сумму заказа
func (m *storefrontMetrics) ObserveOrderAmount(amount float64, orderType string) {
	m.orderAmount.WithLabelValues(orderType).Observe(amount)
}

// IncCompensationFailed увеличивает счетчик неудачных откатов
func (m *storefrontMetrics) IncCompensationFailed() {
	m.compensationFailed.Inc()
}

// IncEventPublishFailed увеличивает счетчик неотправленных событий
func (m *storefrontMetrics) IncEventPublishFailed(eventType string) {
	m.eventFailures.WithLabelValues(eventType).Inc()
}

// IncImageRejected увеличивает счетчик отклоненных изображений
func (m *storefrontMetrics) IncImageRejected(reason string) {
	m.imagesRejected.WithLabelValues(reason).Inc()
}

// ObserveHTTPRequest записывает HTTP запрос
func (m *storefrontMetrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
