package repository

import (
	"context"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/pkg/logger"
)

// CachedProductRepository реализует ProductRepository с кешированием.
// Cache failures are logged and never fail the call.
type CachedProductRepository struct {
	repo  ProductRepository
	cache *RedisCache
	log   *logger.Logger
}

// NewCachedProductRepository создает новый репозиторий товаров с кешированием
func NewCachedProductRepository(repo ProductRepository, cache *RedisCache, log *logger.Logger) ProductRepository {
	return &CachedProductRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// GetAll получает список товаров (сначала из кеша, потом из БД)
func (r *CachedProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	var cached []domain.Product
	if hit, err := r.cache.get(ctx, productsListKey, &cached); err != nil {
		r.log.Warnw("Error getting products from cache", "error", err)
	} else if hit {
		return cached, nil
	}

	products, err := r.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.set(ctx, productsListKey, products); err != nil {
		r.log.Warnw("Failed to cache products", "error", err)
	}
	return products, nil
}

// GetByID получает товар по ID (сначала из кеша, потом из БД)
func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	var cached domain.Product
	if hit, err := r.cache.get(ctx, productKeyPrefix+id, &cached); err != nil {
		// Продолжаем выполнение при ошибке кеша
		r.log.Warnw("Error getting product from cache", "error", err, "productID", id)
	} else if hit {
		r.log.Debugw("Product found in cache", "productID", id)
		return cached, nil
	}

	product, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if err := r.cache.set(ctx, productKeyPrefix+id, product); err != nil {
		r.log.Warnw("Failed to cache product after fetching", "error", err, "productID", id)
	}
	return product, nil
}

// Create сохраняет товар в БД и инвалидирует кеш списка
func (r *CachedProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	created, err := r.repo.Create(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	r.invalidate(ctx)
	return created, nil
}

// Update обновляет товар в БД и инвалидирует кеш
func (r *CachedProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	updated, err := r.repo.Update(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	r.invalidate(ctx, productKeyPrefix+product.ID)
	return updated, nil
}

// Delete удаляет товар из БД и кеша
func (r *CachedProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, productKeyPrefix+id)
	return nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.del(ctx, append(keys, productsListKey)...); err != nil {
		r.log.Warnw("Failed to invalidate products cache", "error", err)
	}
}

// CachedServiceRepository реализует ServiceRepository с кешированием
type CachedServiceRepository struct {
	repo  ServiceRepository
	cache *RedisCache
	log   *logger.Logger
}

// NewCachedServiceRepository создает новый репозиторий услуг с кешированием
func NewCachedServiceRepository(repo ServiceRepository, cache *RedisCache, log *logger.Logger) ServiceRepository {
	return &CachedServiceRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// GetAll получает список услуг (сначала из кеша, потом из БД)
func (r *CachedServiceRepository) GetAll(ctx context.Context) ([]domain.Service, error) {
	var cached []domain.Service
	if hit, err := r.cache.get(ctx, servicesListKey, &cached); err != nil {
		r.log.Warnw("Error getting services from cache", "error", err)
	} else if hit {
		return cached, nil
	}

	services, err := r.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.set(ctx, servicesListKey, services); err != nil {
		r.log.Warnw("Failed to cache services", "error", err)
	}
	return services, nil
}

// GetByID получает услугу по ID (сначала из кеша, потом из БД)
func (r *CachedServiceRepository) GetByID(ctx context.Context, id string) (domain.Service, error) {
	var cached domain.Service
	if hit, err := r.cache.get(ctx, serviceKeyPrefix+id, &cached); err != nil {
		r.log.Warnw("Error getting service from cache", "error", err, "serviceID", id)
	} else if hit {
		r.log.Debugw("Service found in cache", "serviceID", id)
		return cached, nil
	}

	service, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Service{}, err
	}

	if err := r.cache.set(ctx, serviceKeyPrefix+id, service); err != nil {
		r.log.Warnw("Failed to cache service after fetching", "error", err, "serviceID", id)
	}
	return service, nil
}

// Create сохраняет услугу в БД и инвалидирует кеш списка
func (r *CachedServiceRepository) Create(ctx context.Context, service domain.Service) (domain.Service, error) {
	created, err := r.repo.Create(ctx, service)
	if err != nil {
		return domain.Service{}, err
	}
	r.invalidate(ctx)
	return created, nil
}

// Update обновляет услугу в БД и инвалидирует кеш
func (r *CachedServiceRepository) Update(ctx context.Context, service domain.Service) (domain.Service, error) {
	updated, err := r.repo.Update(ctx, service)
	if err != nil {
		return domain.Service{}, err
	}
	r.invalidate(ctx, serviceKeyPrefix+service.ID)
	return updated, nil
}

// Delete удаляет услугу из БД и кеша
func (r *CachedServiceRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, serviceKeyPrefix+id)
	return nil
}

func (r *CachedServiceRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.del(ctx, append(keys, servicesListKey)...); err != nil {
		r.log.Warnw("Failed to invalidate services cache", "error", err)
	}
}
