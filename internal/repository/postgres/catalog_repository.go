package postgres

import (
	"context"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	productColumns = `id, name, description, price, image, category, created_at, updated_at`
	serviceColumns = `id, name, description, price, images, offers, created_at, updated_at`
)

// PostgresProductRepository реализация репозитория товаров через PostgreSQL
type PostgresProductRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresProductRepository создает новый репозиторий товаров через PostgreSQL
func NewPostgresProductRepository(db *sqlx.DB, log *logger.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{db: db, log: log}
}

// GetAll возвращает все товары
func (r *PostgresProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM products ORDER BY created_at`); err != nil {
		return nil, domain.NewStoreError("query products", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

// GetByID возвращает товар по ID
func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	uid, err := repository.ParseUUID(repository.EntityProduct, id)
	if err != nil {
		return domain.Product{}, err
	}

	var row productRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = $1`, uid); err != nil {
		return domain.Product{}, notFoundOr(err, repository.EntityProduct, id, "get product")
	}
	return row.toDomain(), nil
}

// Create создает новый товар
func (r *PostgresProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (:id, :name, :description, :price, :image, :category, :created_at, :updated_at)
	`

	now := time.Now().UTC()
	product.ID = uuid.New().String()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := r.db.NamedExecContext(ctx, query, productRow(product)); err != nil {
		return domain.Product{}, domain.NewStoreError("insert product", err)
	}
	return product, nil
}

// Update обновляет товар
func (r *PostgresProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	uid, err := repository.ParseUUID(repository.EntityProduct, product.ID)
	if err != nil {
		return domain.Product{}, err
	}

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, image = $4, category = $5, updated_at = $6
		WHERE id = $7
		RETURNING ` + productColumns

	var row productRow
	err = r.db.GetContext(ctx, &row, query,
		product.Name, product.Description, product.Price, product.Image, product.Category, time.Now().UTC(), uid)
	if err != nil {
		return domain.Product{}, notFoundOr(err, repository.EntityProduct, product.ID, "update product")
	}
	return row.toDomain(), nil
}

// Delete удаляет товар
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	uid, err := repository.ParseUUID(repository.EntityProduct, id)
	if err != nil {
		return err
	}
	return deleteByID(ctx, r.db, "products", repository.EntityProduct, id, uid)
}

// PostgresServiceRepository реализация репозитория услуг через PostgreSQL
type PostgresServiceRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresServiceRepository создает новый репозиторий услуг через PostgreSQL
func NewPostgresServiceRepository(db *sqlx.DB, log *logger.Logger) *PostgresServiceRepository {
	return &PostgresServiceRepository{db: db, log: log}
}

// GetAll возвращает все услуги
func (r *PostgresServiceRepository) GetAll(ctx context.Context) ([]domain.Service, error) {
	var rows []serviceRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+serviceColumns+` FROM services ORDER BY created_at`); err != nil {
		return nil, domain.NewStoreError("query services", err)
	}

	services := make([]domain.Service, 0, len(rows))
	for _, row := range rows {
		services = append(services, row.toDomain())
	}
	return services, nil
}

// GetByID возвращает услугу по ID
func (r *PostgresServiceRepository) GetByID(ctx context.Context, id string) (domain.Service, error) {
	uid, err := repository.ParseUUID(repository.EntityService, id)
	if err != nil {
		return domain.Service{}, err
	}

	var row serviceRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, uid); err != nil {
		return domain.Service{}, notFoundOr(err, repository.EntityService, id, "get service")
	}
	return row.toDomain(), nil
}

// Create создает новую услугу
func (r *PostgresServiceRepository) Create(ctx context.Context, service domain.Service) (domain.Service, error) {
	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now().UTC()
	service.ID = uuid.New().String()
	service.CreatedAt = now
	service.UpdatedAt = now
	if service.Images == nil {
		service.Images = []string{}
	}
	if service.Offers == nil {
		service.Offers = []domain.Offer{}
	}

	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.Name,
		service.Description,
		service.Price,
		jsonb[[]string]{V: service.Images},
		jsonb[[]domain.Offer]{V: service.Offers},
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return domain.Service{}, domain.NewStoreError("insert service", err)
	}
	return service, nil
}

// Update обновляет услугу
func (r *PostgresServiceRepository) Update(ctx context.Context, service domain.Service) (domain.Service, error) {
	uid, err := repository.ParseUUID(repository.EntityService, service.ID)
	if err != nil {
		return domain.Service{}, err
	}

	query := `
		UPDATE services
		SET name = $1, description = $2, price = $3, images = $4, offers = $5, updated_at = $6
		WHERE id = $7
		RETURNING ` + serviceColumns

	var row serviceRow
	err = r.db.GetContext(ctx, &row, query,
		service.Name,
		service.Description,
		service.Price,
		jsonb[[]string]{V: service.Images},
		jsonb[[]domain.Offer]{V: service.Offers},
		time.Now().UTC(),
		uid,
	)
	if err != nil {
		return domain.Service{}, notFoundOr(err, repository.EntityService, service.ID, "update service")
	}
	return row.toDomain(), nil
}

// Delete удаляет услугу
func (r *PostgresServiceRepository) Delete(ctx context.Context, id string) error {
	uid, err := repository.ParseUUID(repository.EntityService, id)
	if err != nil {
		return err
	}
	return deleteByID(ctx, r.db, "services", repository.EntityService, id, uid)
}
