package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, product_id, service_id, name, email, phone, address, zipcode, total_amount, order_status, order_date, order_type`

// PostgresOrderRepository реализация репозитория заказов через PostgreSQL
type PostgresOrderRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresOrderRepository создает новый репозиторий заказов через PostgreSQL
func NewPostgresOrderRepository(db *sqlx.DB, log *logger.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db, log: log}
}

// GetAll возвращает все заказы
func (r *PostgresOrderRepository) GetAll(ctx context.Context) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+orderColumns+` FROM orders ORDER BY order_date`); err != nil {
		return nil, domain.NewStoreError("query orders", err)
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toDomain())
	}
	return orders, nil
}

// GetByID возвращает заказ по ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	uid, err := repository.ParseUUID(repository.EntityOrder, id)
	if err != nil {
		return domain.Order{}, err
	}

	var row orderRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, uid); err != nil {
		return domain.Order{}, notFoundOr(err, repository.EntityOrder, id, "get order")
	}
	return row.toDomain(), nil
}

// Create создает новый заказ
func (r *PostgresOrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES (:id, :product_id, :service_id, :name, :email, :phone, :address, :zipcode,
		        :total_amount, :order_status, :order_date, :order_type)
	`

	order.ID = uuid.New().String()
	// TIMESTAMPTZ keeps microseconds
	order.OrderDate = order.OrderDate.Truncate(time.Microsecond)
	row := orderRow{
		ID:          order.ID,
		ProductID:   order.ProductID,
		ServiceID:   order.ServiceID,
		Name:        order.Name,
		Email:       order.Email,
		Phone:       order.Phone,
		Address:     order.Address,
		Zipcode:     order.Zipcode,
		TotalAmount: order.TotalAmount,
		OrderStatus: string(order.OrderStatus),
		OrderDate:   order.OrderDate,
		OrderType:   order.OrderType,
	}

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return domain.Order{}, domain.NewStoreError("insert order", err)
	}

	r.log.Debug("Order %s stored", order.ID)
	return order, nil
}

// UpdateStatus меняет только статус заказа, если он не изменился с момента проверки
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (domain.Order, error) {
	uid, err := repository.ParseUUID(repository.EntityOrder, id)
	if err != nil {
		return domain.Order{}, err
	}

	query := `UPDATE orders SET order_status = $1 WHERE id = $2 AND order_status = $3 RETURNING ` + orderColumns

	var row orderRow
	err = r.db.GetContext(ctx, &row, query, string(to), uid, string(from))
	if errors.Is(err, sql.ErrNoRows) {
		// Either the order is gone or its status moved
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return domain.Order{}, getErr
		}
		return domain.Order{}, repository.StatusChanged(from, current.OrderStatus)
	}
	if err != nil {
		return domain.Order{}, domain.NewStoreError("update order status", err)
	}
	return row.toDomain(), nil
}

// Delete удаляет заказ
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	uid, err := repository.ParseUUID(repository.EntityOrder, id)
	if err != nil {
		return err
	}
	return deleteByID(ctx, r.db, "orders", repository.EntityOrder, id, uid)
}
