package postgres

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// jsonb maps a Go value to a JSONB column
type jsonb[T any] struct {
	V T
}

// Value реализует driver.Valuer
func (j jsonb[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan реализует sql.Scanner
func (j *jsonb[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported source type %T", src)
	}
	return json.Unmarshal(raw, &j.V)
}

type customerRow struct {
	ID        string          `db:"id"`
	Email     string          `db:"email"`
	Name      string          `db:"name"`
	Mobile    string          `db:"mobile"`
	Address   string          `db:"address"`
	Zipcode   string          `db:"zipcode"`
	IPAddress string          `db:"ip_address"`
	Orders    jsonb[[]string] `db:"orders"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r customerRow) toDomain() domain.Customer {
	orders := r.Orders.V
	if orders == nil {
		orders = []string{}
	}
	return domain.Customer{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Mobile:    r.Mobile,
		Address:   r.Address,
		Zipcode:   r.Zipcode,
		IPAddress: r.IPAddress,
		Orders:    orders,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type productRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Price       string    `db:"price"`
	Image       string    `db:"image"`
	Category    string    `db:"category"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product(r)
}

type serviceRow struct {
	ID          string                `db:"id"`
	Name        string                `db:"name"`
	Description string                `db:"description"`
	Price       string                `db:"price"`
	Images      jsonb[[]string]       `db:"images"`
	Offers      jsonb[[]domain.Offer] `db:"offers"`
	CreatedAt   time.Time             `db:"created_at"`
	UpdatedAt   time.Time             `db:"updated_at"`
}

func (r serviceRow) toDomain() domain.Service {
	s := domain.Service{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Images:      r.Images.V,
		Offers:      r.Offers.V,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if s.Images == nil {
		s.Images = []string{}
	}
	if s.Offers == nil {
		s.Offers = []domain.Offer{}
	}
	return s
}

type orderRow struct {
	ID          string    `db:"id"`
	ProductID   string    `db:"product_id"`
	ServiceID   string    `db:"service_id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Phone       string    `db:"phone"`
	Address     string    `db:"address"`
	Zipcode     string    `db:"zipcode"`
	TotalAmount float64   `db:"total_amount"`
	OrderStatus string    `db:"order_status"`
	OrderDate   time.Time `db:"order_date"`
	OrderType   string    `db:"order_type"`
}

func (r orderRow) toDomain() domain.Order {
	return domain.Order{
		ID:          r.ID,
		ProductID:   r.ProductID,
		ServiceID:   r.ServiceID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		Zipcode:     r.Zipcode,
		TotalAmount: r.TotalAmount,
		OrderStatus: domain.OrderStatus(r.OrderStatus),
		OrderDate:   r.OrderDate,
		OrderType:   r.OrderType,
	}
}

// isUniqueViolation проверяет код ошибки на нарушение уникальности
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// notFoundOr maps sql.ErrNoRows to a not-found error and wraps anything else as a store failure
func notFoundOr(err error, entity, id, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(entity, id)
	}
	return domain.NewStoreError(op, err)
}
