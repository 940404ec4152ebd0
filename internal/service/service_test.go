package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/events"
	"github.com/Dhoini/storefront-service/internal/metrics"
	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store     *repository.Store
	recorder  *events.Recorder
	registry  *prometheus.Registry
	metrics   metrics.StorefrontMetrics
	orders    OrderService
	customers CustomerService
}

// newTestEnv builds services over an in-memory store. customize may swap repositories before wiring.
func newTestEnv(t *testing.T, policy OrderPolicy, customize func(*repository.Store)) *testEnv {
	t.Helper()

	log := logger.Nop()
	store := repository.NewMemoryStore(log)
	if customize != nil {
		customize(store)
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewStorefrontMetrics(registry, log)
	recorder := events.NewRecorder(nil)
	clock := func() time.Time { return fixedNow }

	orders := NewOrderService(store, policy, clock, recorder, m, log)
	return &testEnv{
		store:     store,
		recorder:  recorder,
		registry:  registry,
		metrics:   m,
		orders:    orders,
		customers: NewCustomerService(store, orders, recorder, m, log),
	}
}

func (e *testEnv) seedProduct(t *testing.T) domain.Product {
	t.Helper()
	p, err := e.store.Products.Create(context.Background(), domain.Product{Name: "Mug", Price: "12.50"})
	require.NoError(t, err)
	return p
}

func (e *testEnv) seedService(t *testing.T) domain.Service {
	t.Helper()
	s, err := e.store.Services.Create(context.Background(), domain.Service{Name: "Yoga", Description: "Morning class", Price: "20"})
	require.NoError(t, err)
	return s
}

func (e *testEnv) seedCustomer(t *testing.T, email string) domain.Customer {
	t.Helper()
	c, err := e.customers.Register(context.Background(), customerRequest(email), "10.0.0.1")
	require.NoError(t, err)
	return c
}

// assertMetric compares one metric family of the registry with its text exposition
func (e *testEnv) assertMetric(t *testing.T, name, exposition string) {
	t.Helper()
	require.NoError(t, testutil.GatherAndCompare(e.registry, strings.NewReader(exposition), name))
}

func customerRequest(email string) domain.CustomerRequest {
	return domain.CustomerRequest{
		Email:   email,
		Name:    "Ada Lovelace",
		Mobile:  "+1 555 0100",
		Address: "1 Main St",
		Zipcode: "10001",
	}
}

func orderRequest(orderType, productID, serviceID string, amount float64) domain.OrderRequest {
	return domain.OrderRequest{
		ProductID:   productID,
		ServiceID:   serviceID,
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		Phone:       "+1 555 0100",
		Address:     "1 Main St",
		Zipcode:     "10001",
		TotalAmount: &amount,
		OrderType:   orderType,
	}
}

func ptr[T any](v T) *T {
	return &v
}

// failingCustomers fails AppendOrder and delegates everything else
type failingCustomers struct {
	repository.CustomerRepository
}

func (f failingCustomers) AppendOrder(context.Context, string, string) (domain.Customer, error) {
	return domain.Customer{}, domain.NewStoreError("append order", errors.New("connection reset"))
}

// failingOrderDeletes fails Delete and delegates everything else
type failingOrderDeletes struct {
	repository.OrderRepository
}

func (f failingOrderDeletes) Delete(context.Context, string) error {
	return domain.NewStoreError("delete order", errors.New("connection reset"))
}

// readBarrier holds each GetByID until every expected reader has read
type readBarrier struct {
	repository.OrderRepository
	readers *sync.WaitGroup
}

func (b readBarrier) GetByID(ctx context.Context, id string) (domain.Order, error) {
	o, err := b.OrderRepository.GetByID(ctx, id)
	b.readers.Done()
	b.readers.Wait()
	return o, err
}
