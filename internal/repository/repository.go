package repository

import (
	"context"

	"github.com/Dhoini/storefront-service/internal/domain"
)

// CustomerRepository интерфейс для работы с клиентами
type CustomerRepository interface {
	GetAll(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id string) (domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (domain.Customer, error)
	// Create assigns the identifier and timestamps. A taken email yields a *domain.DuplicateError.
	Create(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	Update(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	// AppendOrder adds orderID to the end of the customer's history unless it is already there.
	AppendOrder(ctx context.Context, customerID, orderID string) (domain.Customer, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository интерфейс для работы с товарами
type ProductRepository interface {
	GetAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (domain.Product, error)
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// ServiceRepository интерфейс для работы с услугами
type ServiceRepository interface {
	GetAll(ctx context.Context) ([]domain.Service, error)
	GetByID(ctx context.Context, id string) (domain.Service, error)
	Create(ctx context.Context, service domain.Service) (domain.Service, error)
	Update(ctx context.Context, service domain.Service) (domain.Service, error)
	Delete(ctx context.Context, id string) error
}

// OrderRepository интерфейс для работы с заказами. There is no full-field update.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (domain.Order, error)
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	// UpdateStatus replaces only the orderStatus field, and only while it still equals from.
	// A status that moved in the meantime yields a validation error from StatusChanged.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (domain.Order, error)
	Delete(ctx context.Context, id string) error
}

// Store bundles the repositories of one backend with its lifecycle.
type Store struct {
	Customers CustomerRepository
	Products  ProductRepository
	Services  ServiceRepository
	Orders    OrderRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// NewStore assembles a Store. ping and closeFn may be nil.
func NewStore(
	customers CustomerRepository,
	products ProductRepository,
	services ServiceRepository,
	orders OrderRepository,
	ping func(ctx context.Context) error,
	closeFn func(ctx context.Context) error,
) *Store {
	return &Store{
		Customers: customers,
		Products:  products,
		Services:  services,
		Orders:    orders,
		ping:      ping,
		close:     closeFn,
	}
}

// Ping checks that the backend is reachable
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
