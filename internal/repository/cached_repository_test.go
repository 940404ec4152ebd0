package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProductRepository counts reads that reach the backing store
type countingProductRepository struct {
	ProductRepository
	reads int
}

func (r *countingProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	r.reads++
	return r.ProductRepository.GetByID(ctx, id)
}

func (r *countingProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	r.reads++
	return r.ProductRepository.GetAll(ctx)
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCacheWithClient(client, time.Minute, logger.Nop()), mr
}

func TestCachedProductRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	backing := &countingProductRepository{ProductRepository: NewInMemoryProductRepository(logger.Nop())}
	repo := NewCachedProductRepository(backing, cache, logger.Nop())

	p, err := repo.Create(ctx, domain.Product{Name: "Mug", Price: "12"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mug", got.Name)
	}
	assert.Equal(t, 1, backing.reads)
	assert.True(t, mr.Exists(productKeyPrefix+p.ID))
	assert.Equal(t, time.Minute, mr.TTL(productKeyPrefix+p.ID))
}

func TestCachedProductRepository_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	backing := &countingProductRepository{ProductRepository: NewInMemoryProductRepository(logger.Nop())}
	repo := NewCachedProductRepository(backing, cache, logger.Nop())

	p, err := repo.Create(ctx, domain.Product{Name: "Mug", Price: "12"})
	require.NoError(t, err)
	_, err = repo.GetAll(ctx)
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)

	p.Price = "15"
	_, err = repo.Update(ctx, p)
	require.NoError(t, err)
	assert.False(t, mr.Exists(productKeyPrefix+p.ID))
	assert.False(t, mr.Exists(productsListKey))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "15", got.Price)
}

func TestCachedProductRepository_CacheDownFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	repo := NewCachedProductRepository(NewInMemoryProductRepository(logger.Nop()), cache, logger.Nop())

	p, err := repo.Create(ctx, domain.Product{Name: "Mug", Price: "12"})
	require.NoError(t, err)

	mr.SetError("ERR cache unavailable")

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	require.NoError(t, repo.Delete(ctx, p.ID))
}

func TestCachedServiceRepository_DeleteEvicts(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	repo := NewCachedServiceRepository(NewInMemoryServiceRepository(logger.Nop()), cache, logger.Nop())

	s, err := repo.Create(ctx, domain.Service{
		Name: "Yoga", Description: "d", Price: "20",
		Offers: []domain.Offer{{Name: "Trial", Price: "5", Description: "first"}},
	})
	require.NoError(t, err)

	cached, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Offers, cached.Offers)
	assert.True(t, mr.Exists(serviceKeyPrefix+s.ID))

	require.NoError(t, repo.Delete(ctx, s.ID))
	assert.False(t, mr.Exists(serviceKeyPrefix+s.ID))

	_, err = repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
