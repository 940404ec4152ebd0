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

const customerColumns = `id, email, name, mobile, address, zipcode, ip_address, orders, created_at, updated_at`

// PostgresCustomerRepository реализация репозитория клиентов через PostgreSQL
type PostgresCustomerRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresCustomerRepository создает новый репозиторий клиентов через PostgreSQL
func NewPostgresCustomerRepository(db *sqlx.DB, log *logger.Logger) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{
		db:  db,
		log: log,
	}
}

// GetAll возвращает всех клиентов
func (r *PostgresCustomerRepository) GetAll(ctx context.Context) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at`

	var rows []customerRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, domain.NewStoreError("query customers", err)
	}

	customers := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, row.toDomain())
	}

	return customers, nil
}

// GetByID возвращает клиента по ID
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	uid, err := repository.ParseUUID(repository.EntityCustomer, id)
	if err != nil {
		return domain.Customer{}, err
	}

	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	var row customerRow
	if err := r.db.GetContext(ctx, &row, query, uid); err != nil {
		return domain.Customer{}, notFoundOr(err, repository.EntityCustomer, id, "get customer")
	}

	return row.toDomain(), nil
}

// GetByEmail возвращает клиента по email
func (r *PostgresCustomerRepository) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE lower(email) = lower($1)`

	var row customerRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		return domain.Customer{}, notFoundOr(err, repository.EntityCustomer, email, "get customer by email")
	}

	return row.toDomain(), nil
}

// Create создает нового клиента
func (r *PostgresCustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now().UTC()
	customer.ID = uuid.New().String()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	if customer.Orders == nil {
		customer.Orders = []string{}
	}

	_, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.Email,
		customer.Name,
		customer.Mobile,
		customer.Address,
		customer.Zipcode,
		customer.IPAddress,
		jsonb[[]string]{V: customer.Orders},
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Customer{}, domain.NewDuplicateError(repository.EntityCustomer, "email", customer.Email)
		}
		return domain.Customer{}, domain.NewStoreError("insert customer", err)
	}

	r.log.Debug("Customer %s stored", customer.ID)
	return customer, nil
}

// Update обновляет существующего клиента. ip_address and orders are never rewritten here.
func (r *PostgresCustomerRepository) Update(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	uid, err := repository.ParseUUID(repository.EntityCustomer, customer.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	query := `
		UPDATE customers
		SET email = $1, name = $2, mobile = $3, address = $4, zipcode = $5, updated_at = $6
		WHERE id = $7
		RETURNING ` + customerColumns

	var row customerRow
	err = r.db.GetContext(ctx, &row, query,
		customer.Email,
		customer.Name,
		customer.Mobile,
		customer.Address,
		customer.Zipcode,
		time.Now().UTC(),
		uid,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Customer{}, domain.NewDuplicateError(repository.EntityCustomer, "email", customer.Email)
		}
		return domain.Customer{}, notFoundOr(err, repository.EntityCustomer, customer.ID, "update customer")
	}

	return row.toDomain(), nil
}

// AppendOrder добавляет заказ в историю клиента, если его там еще нет
func (r *PostgresCustomerRepository) AppendOrder(ctx context.Context, customerID, orderID string) (domain.Customer, error) {
	uid, err := repository.ParseUUID(repository.EntityCustomer, customerID)
	if err != nil {
		return domain.Customer{}, err
	}

	query := `
		UPDATE customers
		SET orders = orders || jsonb_build_array($2::text), updated_at = $3
		WHERE id = $1 AND NOT orders @> jsonb_build_array($2::text)
		RETURNING ` + customerColumns

	var row customerRow
	err = r.db.GetContext(ctx, &row, query, uid, orderID, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		// Either the customer is missing or the order is already attached
		return r.GetByID(ctx, customerID)
	}
	if err != nil {
		return domain.Customer{}, domain.NewStoreError("append order", err)
	}

	return row.toDomain(), nil
}

// Delete удаляет клиента
func (r *PostgresCustomerRepository) Delete(ctx context.Context, id string) error {
	uid, err := repository.ParseUUID(repository.EntityCustomer, id)
	if err != nil {
		return err
	}

	return deleteByID(ctx, r.db, "customers", repository.EntityCustomer, id, uid)
}

// deleteByID removes one row and reports a missing row as not found
func deleteByID(ctx context.Context, db *sqlx.DB, table, entity, id string, uid uuid.UUID) error {
	result, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, uid)
	if err != nil {
		return domain.NewStoreError("delete "+entity, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStoreError("delete "+entity, err)
	}
	if affected == 0 {
		return domain.NewNotFoundError(entity, id)
	}

	return nil
}
