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

// OrderPolicy правила жизненного цикла заказов
type OrderPolicy struct {
	// StrictReferences requires orderType to name the one reference that is set and the entity to exist
	StrictReferences bool
	Status           domain.StatusPolicy
}

// OrderService интерфейс сервиса для работы с заказами
type OrderService interface {
	GetAll(ctx context.Context, populate bool) ([]domain.OrderView, error)
	GetByID(ctx context.Context, id string, populate bool) (domain.OrderView, error)
	Create(ctx context.Context, req domain.OrderRequest) (domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (domain.Order, error)
	Delete(ctx context.Context, id string) error
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	services repository.ServiceRepository
	policy   OrderPolicy
	clock    Clock
	notifier
}

// NewOrderService создает новый сервис для работы с заказами
func NewOrderService(
	store *repository.Store,
	policy OrderPolicy,
	clock Clock,
	publisher events.Publisher,
	m metrics.StorefrontMetrics,
	log *logger.Logger,
) OrderService {
	if clock == nil {
		clock = UTCClock
	}
	return &orderService{
		orders:   store.Orders,
		products: store.Products,
		services: store.Services,
		policy:   policy,
		clock:    clock,
		notifier: notifier{publisher: publisher, metrics: m, log: log},
	}
}

func (s *orderService) GetAll(ctx context.Context, populate bool) ([]domain.OrderView, error) {
	s.log.Debug("Getting all orders")

	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	r := newResolver(s.products, s.services)
	views := make([]domain.OrderView, 0, len(orders))
	for _, o := range orders {
		view := domain.OrderView{Order: o}
		if populate {
			if view, err = r.populate(ctx, o); err != nil {
				return nil, err
			}
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *orderService) GetByID(ctx context.Context, id string, populate bool) (domain.OrderView, error) {
	s.log.Debug("Getting order by ID: %s", id)

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return domain.OrderView{}, err
	}

	if !populate {
		return domain.OrderView{Order: order}, nil
	}
	return newResolver(s.products, s.services).populate(ctx, order)
}

func (s *orderService) Create(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	s.log.Debug("Creating %s order for %s", req.OrderType, req.Email)

	order, err := domain.NewOrder(req, s.clock())
	if err != nil {
		return domain.Order{}, err
	}

	if s.policy.StrictReferences {
		if err := order.CheckReferences(); err != nil {
			return domain.Order{}, err
		}
	}
	if err := s.checkReferencedEntities(ctx, order); err != nil {
		return domain.Order{}, err
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.IncOrderCreated(created.OrderType)
	s.metrics.ObserveOrderAmount(created.TotalAmount, created.OrderType)
	s.emit(ctx, events.OrderCreated, created.ID, created)

	return created, nil
}

// checkReferencedEntities rejects malformed reference ids in every mode.
// A dangling reference is only an error under strict references.
func (s *orderService) checkReferencedEntities(ctx context.Context, order domain.Order) error {
	if order.ProductID != "" {
		_, err := s.products.GetByID(ctx, order.ProductID)
		if err := s.referenceError(err, "productId", repository.EntityProduct); err != nil {
			return err
		}
	}

	if order.ServiceID != "" {
		_, err := s.services.GetByID(ctx, order.ServiceID)
		if err := s.referenceError(err, "serviceId", repository.EntityService); err != nil {
			return err
		}
	}

	return nil
}

func (s *orderService) referenceError(err error, field, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		if s.policy.StrictReferences {
			return domain.NewValidationError(field, "references an unknown "+entity)
		}
		return nil
	default:
		return err
	}
}

func (s *orderService) UpdateStatus(ctx context.Context, id, status string) (domain.Order, error) {
	s.log.Debug("Updating status of order %s to %q", id, status)

	if strings.TrimSpace(status) == "" {
		return domain.Order{}, domain.NewValidationError("orderStatus", "is required")
	}

	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	next, err := s.policy.Status.Next(current.OrderStatus, status)
	if err != nil {
		return domain.Order{}, err
	}
	if next == current.OrderStatus {
		return current, nil
	}

	updated, err := s.orders.UpdateStatus(ctx, id, current.OrderStatus, next)
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.IncOrderStatusChanged(string(current.OrderStatus), string(next))
	s.emit(ctx, events.OrderStatusChanged, id, map[string]string{
		"from": string(current.OrderStatus),
		"to":   string(next),
	})

	return updated, nil
}

func (s *orderService) Delete(ctx context.Context, id string) error {
	s.log.Debug("Deleting order with ID: %s", id)

	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	s.emit(ctx, events.OrderDeleted, id, nil)
	return nil
}

// resolver expands order references, reading each entity at most once per call
type resolver struct {
	productRepo repository.ProductRepository
	serviceRepo repository.ServiceRepository
	products    map[string]*domain.Product
	services    map[string]*domain.Service
}

func newResolver(products repository.ProductRepository, services repository.ServiceRepository) *resolver {
	return &resolver{
		productRepo: products,
		serviceRepo: services,
		products:    make(map[string]*domain.Product),
		services:    make(map[string]*domain.Service),
	}
}

// populate resolves productId and serviceId; a dangling or malformed reference resolves to nil
func (r *resolver) populate(ctx context.Context, order domain.Order) (domain.OrderView, error) {
	view := domain.OrderView{Order: order}

	if order.ProductID != "" {
		p, ok := r.products[order.ProductID]
		if !ok {
			found, err := r.productRepo.GetByID(ctx, order.ProductID)
			if err != nil && !isDangling(err) {
				return domain.OrderView{}, err
			}
			if err == nil {
				p = &found
			}
			r.products[order.ProductID] = p
		}
		view.Product = p
	}

	if order.ServiceID != "" {
		svc, ok := r.services[order.ServiceID]
		if !ok {
			found, err := r.serviceRepo.GetByID(ctx, order.ServiceID)
			if err != nil && !isDangling(err) {
				return domain.OrderView{}, err
			}
			if err == nil {
				svc = &found
			}
			r.services[order.ServiceID] = svc
		}
		view.Service = svc
	}

	return view, nil
}

func isDangling(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidIdentifier)
}
