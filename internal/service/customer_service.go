package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/events"
	"github.com/Dhoini/storefront-service/internal/metrics"
	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/pkg/logger"
)

// PlacedOrder is the result of PlaceOrder
type PlacedOrder struct {
	Order    domain.Order    `json:"order"`
	Customer domain.Customer `json:"customer"`
}

// CustomerService интерфейс сервиса для работы с клиентами
type CustomerService interface {
	GetAll(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id string) (domain.Customer, error)
	Register(ctx context.Context, req domain.CustomerRequest, ip string) (domain.Customer, error)
	Update(ctx context.Context, id string, patch domain.CustomerPatch) (domain.Customer, error)
	Delete(ctx context.Context, id string) error
	// AttachOrder appends an existing order to the customer's history; attaching twice is a no-op.
	AttachOrder(ctx context.Context, customerID, orderID string) (domain.Customer, error)
	// PlaceOrder creates an order and attaches it. A failed attach deletes the created order.
	PlaceOrder(ctx context.Context, customerID string, req domain.OrderRequest) (PlacedOrder, error)
}

type customerService struct {
	repo      repository.CustomerRepository
	orderRepo repository.OrderRepository
	orders    OrderService
	notifier
}

// NewCustomerService создает новый сервис для работы с клиентами
func NewCustomerService(
	store *repository.Store,
	orders OrderService,
	publisher events.Publisher,
	m metrics.StorefrontMetrics,
	log *logger.Logger,
) CustomerService {
	return &customerService{
		repo:      store.Customers,
		orderRepo: store.Orders,
		orders:    orders,
		notifier:  notifier{publisher: publisher, metrics: m, log: log},
	}
}

func (s *customerService) GetAll(ctx context.Context) ([]domain.Customer, error) {
	s.log.Debug("Getting all customers")
	return s.repo.GetAll(ctx)
}

func (s *customerService) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	s.log.Debug("Getting customer by ID: %s", id)
	return s.repo.GetByID(ctx, id)
}

func (s *customerService) Register(ctx context.Context, req domain.CustomerRequest, ip string) (domain.Customer, error) {
	s.log.Debug("Registering customer with email: %s", req.Email)

	customer := domain.NewCustomer(req, ip)
	if err := domain.Validate(customer); err != nil {
		return domain.Customer{}, err
	}

	if err := s.ensureEmailFree(ctx, customer.Email, ""); err != nil {
		return domain.Customer{}, err
	}

	// The store's unique index still guards against a concurrent registration
	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}

	s.metrics.IncCustomerRegistered()
	s.emit(ctx, events.CustomerRegistered, created.ID, created)

	return created, nil
}

// ensureEmailFree returns a duplicate error when another customer already uses email
func (s *customerService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == selfID:
		return nil
	default:
		s.log.Warn("Customer with email %s already exists", email)
		return domain.NewDuplicateError(repository.EntityCustomer, "email", email)
	}
}

func (s *customerService) Update(ctx context.Context, id string, patch domain.CustomerPatch) (domain.Customer, error) {
	s.log.Debug("Updating customer with ID: %s", id)

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	previousEmail := existing.Email
	patch.Apply(&existing)

	if err := domain.Validate(existing); err != nil {
		return domain.Customer{}, err
	}

	if !strings.EqualFold(previousEmail, existing.Email) {
		if err := s.ensureEmailFree(ctx, existing.Email, existing.ID); err != nil {
			return domain.Customer{}, err
		}
	}

	return s.repo.Update(ctx, existing)
}

func (s *customerService) Delete(ctx context.Context, id string) error {
	s.log.Debug("Deleting customer with ID: %s", id)

	// Orders referenced by the customer are kept
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.emit(ctx, events.CustomerDeleted, id, nil)
	return nil
}

func (s *customerService) AttachOrder(ctx context.Context, customerID, orderID string) (domain.Customer, error) {
	s.log.Debug("Attaching order %s to customer %s", orderID, customerID)

	customer, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return domain.Customer{}, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return domain.Customer{}, err
	}

	if customer.HasOrder(order.ID) {
		return customer, nil
	}

	updated, err := s.repo.AppendOrder(ctx, customer.ID, order.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	s.emit(ctx, events.OrderAttached, order.ID, map[string]string{"customerId": customer.ID, "orderId": order.ID})
	return updated, nil
}

func (s *customerService) PlaceOrder(ctx context.Context, customerID string, req domain.OrderRequest) (PlacedOrder, error) {
	s.log.Debug("Placing order for customer %s", customerID)

	if _, err := s.repo.GetByID(ctx, customerID); err != nil {
		return PlacedOrder{}, err
	}

	order, err := s.orders.Create(ctx, req)
	if err != nil {
		return PlacedOrder{}, err
	}

	customer, err := s.AttachOrder(ctx, customerID, order.ID)
	if err != nil {
		s.compensate(ctx, order.ID, err)
		return PlacedOrder{}, err
	}

	return PlacedOrder{Order: order, Customer: customer}, nil
}

// compensate deletes an order whose attach failed. A failure here leaves a dangling order.
func (s *customerService) compensate(ctx context.Context, orderID string, cause error) {
	// The request context may already be cancelled; the rollback must still run
	rollbackCtx := context.WithoutCancel(ctx)

	if err := s.orderRepo.Delete(rollbackCtx, orderID); err != nil {
		s.metrics.IncCompensationFailed()
		s.log.Errorw("Failed to delete order after attach failure, order is dangling",
			"orderID", orderID, "attachError", cause, "error", err)
		return
	}

	s.log.Warnw("Order removed after attach failure", "orderID", orderID, "error", cause)
}
