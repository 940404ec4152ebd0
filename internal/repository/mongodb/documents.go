package mongodb

import (
	"errors"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names
const (
	customersCollection = "customers"
	productsCollection  = "products"
	servicesCollection  = "services"
	ordersCollection    = "orders"
)

type customerDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name"`
	Mobile    string             `bson:"mobile"`
	Address   string             `bson:"address"`
	Zipcode   string             `bson:"zipcode"`
	IPAddress string             `bson:"ipAddress"`
	Orders    []string           `bson:"orders"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d customerDocument) toDomain() domain.Customer {
	orders := d.Orders
	if orders == nil {
		orders = []string{}
	}
	return domain.Customer{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Name:      d.Name,
		Mobile:    d.Mobile,
		Address:   d.Address,
		Zipcode:   d.Zipcode,
		IPAddress: d.IPAddress,
		Orders:    orders,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       string             `bson:"price"`
	Image       string             `bson:"image,omitempty"`
	Category    string             `bson:"category"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d productDocument) toDomain() domain.Product {
	return domain.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Image:       d.Image,
		Category:    d.Category,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type serviceDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       string             `bson:"price"`
	Images      []string           `bson:"images"`
	Offers      []domain.Offer     `bson:"offers"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d serviceDocument) toDomain() domain.Service {
	s := domain.Service{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Images:      d.Images,
		Offers:      d.Offers,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if s.Images == nil {
		s.Images = []string{}
	}
	if s.Offers == nil {
		s.Offers = []domain.Offer{}
	}
	return s
}

type orderDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ProductID   string             `bson:"productId,omitempty"`
	ServiceID   string             `bson:"serviceId,omitempty"`
	Name        string             `bson:"name"`
	Email       string             `bson:"email"`
	Phone       string             `bson:"phone"`
	Address     string             `bson:"address"`
	Zipcode     string             `bson:"zipcode"`
	TotalAmount float64            `bson:"totalAmount"`
	OrderStatus string             `bson:"orderStatus"`
	OrderDate   time.Time          `bson:"orderDate"`
	OrderType   string             `bson:"orderType"`
}

func orderFromDomain(o domain.Order) orderDocument {
	return orderDocument{
		ProductID:   o.ProductID,
		ServiceID:   o.ServiceID,
		Name:        o.Name,
		Email:       o.Email,
		Phone:       o.Phone,
		Address:     o.Address,
		Zipcode:     o.Zipcode,
		TotalAmount: o.TotalAmount,
		OrderStatus: string(o.OrderStatus),
		OrderDate:   o.OrderDate,
		OrderType:   o.OrderType,
	}
}

func (d orderDocument) toDomain() domain.Order {
	return domain.Order{
		ID:          d.ID.Hex(),
		ProductID:   d.ProductID,
		ServiceID:   d.ServiceID,
		Name:        d.Name,
		Email:       d.Email,
		Phone:       d.Phone,
		Address:     d.Address,
		Zipcode:     d.Zipcode,
		TotalAmount: d.TotalAmount,
		OrderStatus: domain.OrderStatus(d.OrderStatus),
		OrderDate:   d.OrderDate,
		OrderType:   d.OrderType,
	}
}

// parseObjectID parses a hex ObjectID or returns a *domain.InvalidIDError
func parseObjectID(entity, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.NewInvalidIDError(entity, id)
	}
	return oid, nil
}

// notFoundOr maps mongo.ErrNoDocuments to a not-found error and wraps anything else as a store failure
func notFoundOr(err error, entity, id, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.NewNotFoundError(entity, id)
	}
	return domain.NewStoreError(op, err)
}

// now truncates to milliseconds, the precision BSON dates keep
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
