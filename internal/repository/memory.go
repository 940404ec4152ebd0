package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/google/uuid"
)

// memTable is a map of rows guarded by a RWMutex that remembers insertion order.
type memTable[T any] struct {
	mutex sync.RWMutex
	rows  map[uuid.UUID]T
	order []uuid.UUID
	clone func(T) T
}

func newMemTable[T any](clone func(T) T) *memTable[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &memTable[T]{
		rows:  make(map[uuid.UUID]T),
		clone: clone,
	}
}

// all must be called with at least a read lock held
func (t *memTable[T]) all() []T {
	out := make([]T, 0, len(t.rows))
	for _, id := range t.order {
		out = append(out, t.clone(t.rows[id]))
	}
	return out
}

// remove must be called with the write lock held
func (t *memTable[T]) remove(id uuid.UUID) bool {
	if _, exists := t.rows[id]; !exists {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(v uuid.UUID) bool { return v == id })
	return true
}

func cloneCustomer(c domain.Customer) domain.Customer {
	c.Orders = append([]string{}, c.Orders...)
	return c
}

func cloneService(s domain.Service) domain.Service {
	s.Images = append([]string{}, s.Images...)
	s.Offers = append([]domain.Offer{}, s.Offers...)
	return s
}

// NewMemoryStore создает хранилище в памяти (используется в разработке и тестах)
func NewMemoryStore(log *logger.Logger) *Store {
	return NewStore(
		NewInMemoryCustomerRepository(log),
		NewInMemoryProductRepository(log),
		NewInMemoryServiceRepository(log),
		NewInMemoryOrderRepository(log),
		nil,
		nil,
	)
}

// InMemoryCustomerRepository реализация репозитория клиентов в памяти
type InMemoryCustomerRepository struct {
	table *memTable[domain.Customer]
	log   *logger.Logger
}

// NewInMemoryCustomerRepository создает новый репозиторий клиентов в памяти
func NewInMemoryCustomerRepository(log *logger.Logger) *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{
		table: newMemTable(cloneCustomer),
		log:   log,
	}
}

// GetAll возвращает всех клиентов
func (r *InMemoryCustomerRepository) GetAll(ctx context.Context) ([]domain.Customer, error) {
	r.table.mutex.RLock()
	defer r.table.mutex.RUnlock()

	return r.table.all(), nil
}

// GetByID возвращает клиента по ID
func (r *InMemoryCustomerRepository) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	uid, err := ParseUUID(EntityCustomer, id)
	if err != nil {
		return domain.Customer{}, err
	}

	r.table.mutex.RLock()
	defer r.table.mutex.RUnlock()

	customer, exists := r.table.rows[uid]
	if !exists {
		return domain.Customer{}, domain.NewNotFoundError(EntityCustomer, id)
	}

	return cloneCustomer(customer), nil
}

// GetByEmail возвращает клиента по email
func (r *InMemoryCustomerRepository) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	r.table.mutex.RLock()
	defer r.table.mutex.RUnlock()

	for _, c := range r.table.rows {
		if strings.EqualFold(c.Email, email) {
			return cloneCustomer(c), nil
		}
	}

	return domain.Customer{}, domain.NewNotFoundError(EntityCustomer, email)
}

// emailTaken must be called with a lock held
func (r *InMemoryCustomerRepository) emailTaken(email string, except uuid.UUID) bool {
	for id, c := range r.table.rows {
		if id != except && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

// Create создает нового клиента
func (r *InMemoryCustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	// Проверка на уникальность email
	if r.emailTaken(customer.Email, uuid.Nil) {
		return domain.Customer{}, domain.NewDuplicateError(EntityCustomer, "email", customer.Email)
	}

	id := uuid.New()
	now := time.Now().UTC()
	customer.ID = id.String()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	if customer.Orders == nil {
		customer.Orders = []string{}
	}

	r.table.rows[id] = cloneCustomer(customer)
	r.table.order = append(r.table.order, id)

	return customer, nil
}

// Update обновляет существующего клиента
func (r *InMemoryCustomerRepository) Update(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	uid, err := ParseUUID(EntityCustomer, customer.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	existing, exists := r.table.rows[uid]
	if !exists {
		return domain.Customer{}, domain.NewNotFoundError(EntityCustomer, customer.ID)
	}

	if r.emailTaken(customer.Email, uid) {
		return domain.Customer{}, domain.NewDuplicateError(EntityCustomer, "email", customer.Email)
	}

	// История заказов и IP меняются только через свои пути
	customer.Orders = existing.Orders
	customer.IPAddress = existing.IPAddress
	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = time.Now().UTC()

	r.table.rows[uid] = cloneCustomer(customer)

	return cloneCustomer(customer), nil
}

// AppendOrder добавляет заказ в историю клиента
func (r *InMemoryCustomerRepository) AppendOrder(ctx context.Context, customerID, orderID string) (domain.Customer, error) {
	uid, err := ParseUUID(EntityCustomer, customerID)
	if err != nil {
		return domain.Customer{}, err
	}

	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	customer, exists := r.table.rows[uid]
	if !exists {
		return domain.Customer{}, domain.NewNotFoundError(EntityCustomer, customerID)
	}

	if !customer.HasOrder(orderID) {
		customer = cloneCustomer(customer)
		customer.Orders = append(customer.Orders, orderID)
		customer.UpdatedAt = time.Now().UTC()
		r.table.rows[uid] = customer
	}

	return cloneCustomer(customer), nil
}

// Delete удаляет клиента
func (r *InMemoryCustomerRepository) Delete(ctx context.Context, id string) error {
	uid, err := ParseUUID(EntityCustomer, id)
	if err != nil {
		return err
	}

	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	if !r.table.remove(uid) {
		return domain.NewNotFoundError(EntityCustomer, id)
	}

	return nil
}

// InMemoryProductRepository реализация репозитория товаров в памяти
type InMemoryProductRepository struct {
	table *memTable[domain.Product]
	log   *logger.Logger
}

// NewInMemoryProductRepository создает новый репозиторий товаров в памяти
func NewInMemoryProductRepository(log *logger.Logger) *InMemoryProductRepository {
	return &InMemoryProductRepository{
		table: newMemTable[domain.Product](nil),
		log:   log,
	}
}

// GetAll возвращает все товары
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	r.table.mutex.RLock()
	defer r.table.mutex.RUnlock()

	return r.table.all(), nil
}

// GetByID возвращает товар по ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	uid, err := ParseUUID(EntityProduct, id)
	if err != nil {
		return domain.Product{}, err
	}

	r.table.mutex.RLock()
	defer r.table.mutex.RUnlock()

	product, exists := r.table.rows[uid]
	if !exists {
		return domain.Product{}, domain.NewNotFoundError(EntityProduct, id)
	}

	return product, nil
}

// Create создает новый товар
func (r *InMemoryProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	id := uuid.New()
	now := time.Now().UTC()
	product.ID = id.String()
	product.CreatedAt = now
	product.UpdatedAt = now

	r.table.rows[id] = product
	r.table.order = append(r.table.order, id)

	return product, nil
}

// Update обновляет товар
func (r *InMemoryProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	uid, err := ParseUUID(EntityProduct, product.ID)
	if err != nil {
		return domain.Product{}, err
	}

	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	existing, exists := r.table.rows[uid]
	if !exists {
		return domain.Product{}, domain.NewNotFoundError(EntityProduct, product.ID)
	}

	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.table.rows[uid] = product

	return product, nil
}

// Delete удаляет товар
func (r *InMemoryProductRepository) Delete(ctx context.Context, id string) error {
	uid, err := ParseUUID(EntityProduct, id)
	if err != nil {
		return err
	}

	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	if !r.table.remove(uid) {
		return domain.NewNotFoundError(EntityProduct, id)
	}

	return nil
}

// InMemoryServiceRepository реализация репозитория услуг в памяти
type InMemoryServiceRepository struct {
	table *memTable[domain.Service]
	log   *logger.Logger
}

// NewInMemoryServiceRepository создает новый репозиторий услуг в памяти
func NewInMemoryServiceRepository(log *logger.Logger) *InMemoryServiceRepository {
	return &InMemoryServiceRepository{
		table: newMemTable(cloneService),
		log:   log,
	}
}

// GetAll возвращает все услуги
func (r *InMemoryServiceRepository) GetAll(ctx context.Context) ([]domain.Service, error) {
	r.table.mutex.RLock()
	defer r.table.mutex.RUnlock()

	return r.table.all(), nil
}

// GetByID возвращает услугу по ID
func (r *InMemoryServiceRepository) GetByID(ctx context.Context, id string) (domain.Service, error) {
	uid, err := ParseUUID(EntityService, id)
	if err != nil {
		return domain.Service{}, err
	}

	r.table.mutex.RLock()
	defer r.table.mutex.RUnlock()

	service, exists := r.table.rows[uid]
	if !exists {
		return domain.Service{}, domain.NewNotFoundError(EntityService, id)
	}

	return cloneService(service), nil
}

// Create создает новую услугу
func (r *InMemoryServiceRepository) Create(ctx context.Context, service domain.Service) (domain.Service, error) {
	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	id := uuid.New()
	now := time.Now().UTC()
	service.ID = id.String()
	service.CreatedAt = now
	service.UpdatedAt = now

	r.table.rows[id] = cloneService(service)
	r.table.order = append(r.table.order, id)

	return cloneService(service), nil
}

// Update обновляет услугу
func (r *InMemoryServiceRepository) Update(ctx context.Context, service domain.Service) (domain.Service, error) {
	uid, err := ParseUUID(EntityService, service.ID)
	if err != nil {
		return domain.Service{}, err
	}

	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	existing, exists := r.table.rows[uid]
	if !exists {
		return domain.Service{}, domain.NewNotFoundError(EntityService, service.ID)
	}

	service.CreatedAt = existing.CreatedAt
	service.UpdatedAt = time.Now().UTC()
	r.table.rows[uid] = cloneService(service)

	return cloneService(service), nil
}

// Delete удаляет услугу
func (r *InMemoryServiceRepository) Delete(ctx context.Context, id string) error {
	uid, err := ParseUUID(EntityService, id)
	if err != nil {
		return err
	}

	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	if !r.table.remove(uid) {
		return domain.NewNotFoundError(EntityService, id)
	}

	return nil
}

// InMemoryOrderRepository реализация репозитория заказов в памяти
type InMemoryOrderRepository struct {
	table *memTable[domain.Order]
	log   *logger.Logger
}

// NewInMemoryOrderRepository создает новый репозиторий заказов в памяти
func NewInMemoryOrderRepository(log *logger.Logger) *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		table: newMemTable[domain.Order](nil),
		log:   log,
	}
}

// GetAll возвращает все заказы
func (r *InMemoryOrderRepository) GetAll(ctx context.Context) ([]domain.Order, error) {
	r.table.mutex.RLock()
	defer r.table.mutex.RUnlock()

	return r.table.all(), nil
}

// GetByID возвращает заказ по ID
func (r *InMemoryOrderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	uid, err := ParseUUID(EntityOrder, id)
	if err != nil {
		return domain.Order{}, err
	}

	r.table.mutex.RLock()
	defer r.table.mutex.RUnlock()

	order, exists := r.table.rows[uid]
	if !exists {
		return domain.Order{}, domain.NewNotFoundError(EntityOrder, id)
	}

	return order, nil
}

// Create создает новый заказ
func (r *InMemoryOrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	id := uuid.New()
	order.ID = id.String()

	r.table.rows[id] = order
	r.table.order = append(r.table.order, id)

	return order, nil
}

// UpdateStatus меняет только статус заказа
func (r *InMemoryOrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (domain.Order, error) {
	uid, err := ParseUUID(EntityOrder, id)
	if err != nil {
		return domain.Order{}, err
	}

	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	order, exists := r.table.rows[uid]
	if !exists {
		return domain.Order{}, domain.NewNotFoundError(EntityOrder, id)
	}
	if order.OrderStatus != from {
		return domain.Order{}, StatusChanged(from, order.OrderStatus)
	}

	order.OrderStatus = to
	r.table.rows[uid] = order

	return order, nil
}

// Delete удаляет заказ
func (r *InMemoryOrderRepository) Delete(ctx context.Context, id string) error {
	uid, err := ParseUUID(EntityOrder, id)
	if err != nil {
		return err
	}

	r.table.mutex.Lock()
	defer r.table.mutex.Unlock()

	if !r.table.remove(uid) {
		return domain.NewNotFoundError(EntityOrder, id)
	}

	return nil
}
