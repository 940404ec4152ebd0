package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// emailCollation makes email comparisons case-insensitive
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// MongoCustomerRepository реализация репозитория клиентов через MongoDB
type MongoCustomerRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

// NewMongoCustomerRepository создает новый репозиторий клиентов через MongoDB
func NewMongoCustomerRepository(db *mongo.Database, log *logger.Logger) *MongoCustomerRepository {
	return &MongoCustomerRepository{coll: db.Collection(customersCollection), log: log}
}

// GetAll возвращает всех клиентов
func (r *MongoCustomerRepository) GetAll(ctx context.Context) ([]domain.Customer, error) {
	var docs []customerDocument
	if err := findAll(ctx, r.coll, &docs); err != nil {
		return nil, domain.NewStoreError("find customers", err)
	}

	customers := make([]domain.Customer, 0, len(docs))
	for _, d := range docs {
		customers = append(customers, d.toDomain())
	}
	return customers, nil
}

// GetByID возвращает клиента по ID
func (r *MongoCustomerRepository) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	oid, err := parseObjectID(repository.EntityCustomer, id)
	if err != nil {
		return domain.Customer{}, err
	}

	var doc customerDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Customer{}, notFoundOr(err, repository.EntityCustomer, id, "find customer")
	}
	return doc.toDomain(), nil
}

// GetByEmail возвращает клиента по email
func (r *MongoCustomerRepository) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	var doc customerDocument
	err := r.coll.FindOne(ctx, bson.M{"email": email}, options.FindOne().SetCollation(emailCollation)).Decode(&doc)
	if err != nil {
		return domain.Customer{}, notFoundOr(err, repository.EntityCustomer, email, "find customer by email")
	}
	return doc.toDomain(), nil
}

// Create создает нового клиента
func (r *MongoCustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	ts := now()
	doc := customerDocument{
		Email:     customer.Email,
		Name:      customer.Name,
		Mobile:    customer.Mobile,
		Address:   customer.Address,
		Zipcode:   customer.Zipcode,
		IPAddress: customer.IPAddress,
		Orders:    customer.Orders,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if doc.Orders == nil {
		doc.Orders = []string{}
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Customer{}, domain.NewDuplicateError(repository.EntityCustomer, "email", customer.Email)
		}
		return domain.Customer{}, domain.NewStoreError("insert customer", err)
	}

	doc.ID = insertedID(res)
	return doc.toDomain(), nil
}

// Update обновляет существующего клиента
func (r *MongoCustomerRepository) Update(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	oid, err := parseObjectID(repository.EntityCustomer, customer.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	update := bson.M{"$set": bson.M{
		"email":     customer.Email,
		"name":      customer.Name,
		"mobile":    customer.Mobile,
		"address":   customer.Address,
		"zipcode":   customer.Zipcode,
		"updatedAt": now(),
	}}

	var doc customerDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, returnAfter()).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Customer{}, domain.NewDuplicateError(repository.EntityCustomer, "email", customer.Email)
		}
		return domain.Customer{}, notFoundOr(err, repository.EntityCustomer, customer.ID, "update customer")
	}
	return doc.toDomain(), nil
}

// AppendOrder добавляет заказ в историю клиента; $addToSet keeps the history free of duplicates
func (r *MongoCustomerRepository) AppendOrder(ctx context.Context, customerID, orderID string) (domain.Customer, error) {
	oid, err := parseObjectID(repository.EntityCustomer, customerID)
	if err != nil {
		return domain.Customer{}, err
	}

	update := bson.M{
		"$addToSet": bson.M{"orders": orderID},
		"$set":      bson.M{"updatedAt": now()},
	}

	var doc customerDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, returnAfter()).Decode(&doc); err != nil {
		return domain.Customer{}, notFoundOr(err, repository.EntityCustomer, customerID, "append order")
	}
	return doc.toDomain(), nil
}

// Delete удаляет клиента
func (r *MongoCustomerRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, repository.EntityCustomer, id)
}

// MongoProductRepository реализация репозитория товаров через MongoDB
type MongoProductRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

// NewMongoProductRepository создает новый репозиторий товаров через MongoDB
func NewMongoProductRepository(db *mongo.Database, log *logger.Logger) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(productsCollection), log: log}
}

// GetAll возвращает все товары
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	var docs []productDocument
	if err := findAll(ctx, r.coll, &docs); err != nil {
		return nil, domain.NewStoreError("find products", err)
	}

	products := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toDomain())
	}
	return products, nil
}

// GetByID возвращает товар по ID
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	oid, err := parseObjectID(repository.EntityProduct, id)
	if err != nil {
		return domain.Product{}, err
	}

	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Product{}, notFoundOr(err, repository.EntityProduct, id, "find product")
	}
	return doc.toDomain(), nil
}

// Create создает новый товар
func (r *MongoProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	ts := now()
	doc := productDocument{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Image:       product.Image,
		Category:    product.Category,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return domain.Product{}, domain.NewStoreError("insert product", err)
	}

	doc.ID = insertedID(res)
	return doc.toDomain(), nil
}

// Update обновляет товар
func (r *MongoProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	oid, err := parseObjectID(repository.EntityProduct, product.ID)
	if err != nil {
		return domain.Product{}, err
	}

	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"image":       product.Image,
		"category":    product.Category,
		"updatedAt":   now(),
	}}

	var doc productDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, returnAfter()).Decode(&doc); err != nil {
		return domain.Product{}, notFoundOr(err, repository.EntityProduct, product.ID, "update product")
	}
	return doc.toDomain(), nil
}

// Delete удаляет товар
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, repository.EntityProduct, id)
}

// MongoServiceRepository реализация репозитория услуг через MongoDB
type MongoServiceRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

// NewMongoServiceRepository создает новый репозиторий услуг через MongoDB
func NewMongoServiceRepository(db *mongo.Database, log *logger.Logger) *MongoServiceRepository {
	return &MongoServiceRepository{coll: db.Collection(servicesCollection), log: log}
}

// GetAll возвращает все услуги
func (r *MongoServiceRepository) GetAll(ctx context.Context) ([]domain.Service, error) {
	var docs []serviceDocument
	if err := findAll(ctx, r.coll, &docs); err != nil {
		return nil, domain.NewStoreError("find services", err)
	}

	services := make([]domain.Service, 0, len(docs))
	for _, d := range docs {
		services = append(services, d.toDomain())
	}
	return services, nil
}

// GetByID возвращает услугу по ID
func (r *MongoServiceRepository) GetByID(ctx context.Context, id string) (domain.Service, error) {
	oid, err := parseObjectID(repository.EntityService, id)
	if err != nil {
		return domain.Service{}, err
	}

	var doc serviceDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Service{}, notFoundOr(err, repository.EntityService, id, "find service")
	}
	return doc.toDomain(), nil
}

// Create создает новую услугу
func (r *MongoServiceRepository) Create(ctx context.Context, service domain.Service) (domain.Service, error) {
	ts := now()
	doc := serviceDocument{
		Name:        service.Name,
		Description: service.Description,
		Price:       service.Price,
		Images:      service.Images,
		Offers:      service.Offers,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if doc.Images == nil {
		doc.Images = []string{}
	}
	if doc.Offers == nil {
		doc.Offers = []domain.Offer{}
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return domain.Service{}, domain.NewStoreError("insert service", err)
	}

	doc.ID = insertedID(res)
	return doc.toDomain(), nil
}

// Update обновляет услугу
func (r *MongoServiceRepository) Update(ctx context.Context, service domain.Service) (domain.Service, error) {
	oid, err := parseObjectID(repository.EntityService, service.ID)
	if err != nil {
		return domain.Service{}, err
	}

	images, offers := service.Images, service.Offers
	if images == nil {
		images = []string{}
	}
	if offers == nil {
		offers = []domain.Offer{}
	}

	update := bson.M{"$set": bson.M{
		"name":        service.Name,
		"description": service.Description,
		"price":       service.Price,
		"images":      images,
		"offers":      offers,
		"updatedAt":   now(),
	}}

	var doc serviceDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, returnAfter()).Decode(&doc); err != nil {
		return domain.Service{}, notFoundOr(err, repository.EntityService, service.ID, "update service")
	}
	return doc.toDomain(), nil
}

// Delete удаляет услугу
func (r *MongoServiceRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, repository.EntityService, id)
}

// MongoOrderRepository реализация репозитория заказов через MongoDB
type MongoOrderRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

// NewMongoOrderRepository создает новый репозиторий заказов через MongoDB
func NewMongoOrderRepository(db *mongo.Database, log *logger.Logger) *MongoOrderRepository {
	return &MongoOrderRepository{coll: db.Collection(ordersCollection), log: log}
}

// GetAll возвращает все заказы
func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]domain.Order, error) {
	var docs []orderDocument
	if err := findAll(ctx, r.coll, &docs); err != nil {
		return nil, domain.NewStoreError("find orders", err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.toDomain())
	}
	return orders, nil
}

// GetByID возвращает заказ по ID
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	oid, err := parseObjectID(repository.EntityOrder, id)
	if err != nil {
		return domain.Order{}, err
	}

	var doc orderDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Order{}, notFoundOr(err, repository.EntityOrder, id, "find order")
	}
	return doc.toDomain(), nil
}

// Create создает новый заказ
func (r *MongoOrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	// BSON dates keep milliseconds
	order.OrderDate = order.OrderDate.Truncate(time.Millisecond)
	doc := orderFromDomain(order)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return domain.Order{}, domain.NewStoreError("insert order", err)
	}

	order.ID = insertedID(res).Hex()
	return order, nil
}

// UpdateStatus меняет только статус заказа, если он не изменился с момента проверки
func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (domain.Order, error) {
	oid, err := parseObjectID(repository.EntityOrder, id)
	if err != nil {
		return domain.Order{}, err
	}

	filter := bson.M{"_id": oid, "orderStatus": string(from)}
	update := bson.M{"$set": bson.M{"orderStatus": string(to)}}

	var doc orderDocument
	err = r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return domain.Order{}, getErr
		}
		return domain.Order{}, repository.StatusChanged(from, current.OrderStatus)
	}
	if err != nil {
		return domain.Order{}, domain.NewStoreError("update order status", err)
	}
	return doc.toDomain(), nil
}

// Delete удаляет заказ
func (r *MongoOrderRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, repository.EntityOrder, id)
}
