package domain

import (
	"strings"
	"time"
)

// Order types
const (
	OrderTypeProduct = "product"
	OrderTypeService = "service"
)

// Order заказ: контактные данные клиента на момент создания плюс ссылка на товар или услугу
type Order struct {
	ID          string      `json:"id"`
	ProductID   string      `json:"productId,omitempty"`
	ServiceID   string      `json:"serviceId,omitempty"`
	Name        string      `json:"name" validate:"required"`
	Email       string      `json:"email" validate:"required"`
	Phone       string      `json:"phone" validate:"required"`
	Address     string      `json:"address" validate:"required"`
	Zipcode     string      `json:"zipcode" validate:"required"`
	TotalAmount float64     `json:"totalAmount" validate:"gte=0"`
	OrderStatus OrderStatus `json:"orderStatus" validate:"required"`
	OrderDate   time.Time   `json:"orderDate"`
	OrderType   string      `json:"orderType" validate:"required"`
}

// OrderRequest поля создания заказа. TotalAmount is a pointer so a missing amount is distinguishable from 0.
type OrderRequest struct {
	ProductID   string   `json:"productId"`
	ServiceID   string   `json:"serviceId"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Address     string   `json:"address"`
	Zipcode     string   `json:"zipcode"`
	TotalAmount *float64 `json:"totalAmount"`
	OrderType   string   `json:"orderType"`
}

// StatusRequest тело запроса смены статуса
type StatusRequest struct {
	OrderStatus string `json:"orderStatus"`
}

// OrderView заказ с развернутыми ссылками на товар и услугу
type OrderView struct {
	Order
	Product *Product `json:"product,omitempty"`
	Service *Service `json:"service,omitempty"`
}

// NewOrder builds a pending order dated now. Validation is left to the caller.
func NewOrder(req OrderRequest, now time.Time) (Order, error) {
	var errs ValidationErrors
	if req.TotalAmount == nil {
		errs.Add("totalAmount", "is required")
	}

	o := Order{
		ProductID:   strings.TrimSpace(req.ProductID),
		ServiceID:   strings.TrimSpace(req.ServiceID),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Zipcode:     req.Zipcode,
		OrderStatus: StatusPending,
		OrderDate:   now,
		OrderType:   strings.TrimSpace(req.OrderType),
	}
	if req.TotalAmount != nil {
		o.TotalAmount = *req.TotalAmount
	}

	if err := Validate(o); err != nil {
		if verrs, ok := err.(ValidationErrors); ok {
			errs = append(errs, verrs...)
		} else {
			return Order{}, err
		}
	}

	return o, errs.OrNil()
}

// CheckReferences enforces the strict reference rule: orderType names the one reference that is set.
// Existence of the referenced entity is checked by the caller against the store.
func (o Order) CheckReferences() error {
	var errs ValidationErrors

	switch o.OrderType {
	case OrderTypeProduct:
		if o.ProductID == "" {
			errs.Add("productId", "is required for product orders")
		}
		if o.ServiceID != "" {
			errs.Add("serviceId", "must be empty for product orders")
		}
	case OrderTypeService:
		if o.ServiceID == "" {
			errs.Add("serviceId", "is required for service orders")
		}
		if o.ProductID != "" {
			errs.Add("productId", "must be empty for service orders")
		}
	default:
		errs.Add("orderType", "must be one of: product service")
	}

	return errs.OrNil()
}
