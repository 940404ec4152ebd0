package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/internal/storage"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImageStore(t *testing.T) *storage.LocalStore {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir(), "/public", 1024, logger.Nop())
	require.NoError(t, err)
	return store
}

func pngUpload(name string) storage.Upload {
	body := []byte("\x89PNG\r\n\x1a\nfake")
	return storage.Upload{FileName: name, ContentType: "image/png", Size: int64(len(body)), Body: bytes.NewReader(body)}
}

func storedFiles(t *testing.T, images *storage.LocalStore) []string {
	t.Helper()
	entries, err := os.ReadDir(images.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// failingProducts fails Create and delegates everything else
type failingProducts struct {
	repository.ProductRepository
}

func (f failingProducts) Create(context.Context, domain.Product) (domain.Product, error) {
	return domain.Product{}, domain.NewStoreError("insert product", assert.AnError)
}

func TestProductService_CreateWithImage(t *testing.T) {
	env := newTestEnv(t, OrderPolicy{}, nil)
	images := newImageStore(t)
	products := NewProductService(env.store.Products, images, env.metrics, logger.Nop())

	p, err := products.Create(context.Background(), domain.ProductRequest{Name: "Mug", Price: "12.50"}, ptr(pngUpload("mug.png")))
	require.NoError(t, err)
	assert.Regexp(t, `^/public/\d+-mug\.png$`, p.Image)

	files := storedFiles(t, images)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Base(p.Image), files[0])

	require.NoError(t, products.Delete(context.Background(), p.ID))
	assert.Empty(t, storedFiles(t, images))
}

func TestProductService_CreateRejections(t *testing.T) {
	env := newTestEnv(t, OrderPolicy{}, nil)
	images := newImageStore(t)
	products := NewProductService(env.store.Products, images, env.metrics, logger.Nop())
	ctx := context.Background()

	t.Run("invalid price stores nothing", func(t *testing.T) {
		_, err := products.Create(ctx, domain.ProductRequest{Name: "Mug", Price: "-1"}, ptr(pngUpload("mug.png")))
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, storedFiles(t, images))
	})

	t.Run("unsupported media", func(t *testing.T) {
		upload := pngUpload("notes.txt")
		upload.ContentType = "text/plain"
		_, err := products.Create(ctx, domain.ProductRequest{Name: "Mug", Price: "3"}, &upload)
		assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)
	})

	t.Run("too large", func(t *testing.T) {
		upload := pngUpload("big.png")
		upload.Size = 4096
		_, err := products.Create(ctx, domain.ProductRequest{Name: "Mug", Price: "3"}, &upload)
		var me *domain.MediaError
		require.ErrorAs(t, err, &me)
		assert.True(t, me.TooLarge)
	})

	env.assertMetric(t, "storefront_images_rejected_total", `
# HELP storefront_images_rejected_total The total number of rejected image uploads
# TYPE storefront_images_rejected_total counter
storefront_images_rejected_total{reason="size"} 1
storefront_images_rejected_total{reason="type"} 1
`)
}

func TestProductService_CreateStoreFailureRemovesImage(t *testing.T) {
	env := newTestEnv(t, OrderPolicy{}, nil)
	images := newImageStore(t)
	products := NewProductService(failingProducts{env.store.Products}, images, env.metrics, logger.Nop())

	_, err := products.Create(context.Background(), domain.ProductRequest{Name: "Mug", Price: "3"}, ptr(pngUpload("mug.png")))
	require.ErrorIs(t, err, domain.ErrStore)
	assert.Empty(t, storedFiles(t, images))
}

func TestProductService_Update(t *testing.T) {
	env := newTestEnv(t, OrderPolicy{}, nil)
	products := NewProductService(env.store.Products, newImageStore(t), env.metrics, logger.Nop())
	ctx := context.Background()

	p, err := products.Create(ctx, domain.ProductRequest{Name: "Mug", Price: "12.50", Category: "kitchen"}, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Image)

	updated, err := products.Update(ctx, p.ID, domain.ProductPatch{Price: ptr("9.99")})
	require.NoError(t, err)
	assert.Equal(t, "9.99", updated.Price)
	assert.Equal(t, "kitchen", updated.Category)

	_, err = products.Update(ctx, p.ID, domain.ProductPatch{Name: ptr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = products.Update(ctx, uuid.NewString(), domain.ProductPatch{Name: ptr("Cup")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceService_Create(t *testing.T) {
	env := newTestEnv(t, OrderPolicy{}, nil)
	images := newImageStore(t)
	services := NewServiceService(env.store.Services, images, env.metrics, logger.Nop())
	ctx := context.Background()

	req := domain.ServiceRequest{
		Name:        "Yoga",
		Description: "Morning class",
		Price:       "20",
		Offers:      []domain.Offer{{Name: "Trial", Price: "5", Description: "First visit"}},
	}

	created, err := services.Create(ctx, req, []storage.Upload{pngUpload("a.png"), pngUpload("b.png")})
	require.NoError(t, err)
	require.Len(t, created.Images, 2)
	assert.Regexp(t, `-a\.png$`, created.Images[0])
	assert.Regexp(t, `-b\.png$`, created.Images[1])
	assert.Equal(t, req.Offers, created.Offers)

	plain, err := services.Create(ctx, domain.ServiceRequest{Name: "Massage", Description: "60 min", Price: "80"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, plain.Images)
	assert.Equal(t, []domain.Offer{}, plain.Offers)

	require.NoError(t, services.Delete(ctx, created.ID))
	assert.Empty(t, storedFiles(t, images))
}

func TestServiceService_CreateRejections(t *testing.T) {
	env := newTestEnv(t, OrderPolicy{}, nil)
	images := newImageStore(t)
	services := NewServiceService(env.store.Services, images, env.metrics, logger.Nop())
	ctx := context.Background()
	base := domain.ServiceRequest{Name: "Yoga", Description: "Morning class", Price: "20"}

	t.Run("too many images", func(t *testing.T) {
		uploads := make([]storage.Upload, domain.MaxServiceImages+1)
		for i := range uploads {
			uploads[i] = pngUpload("x.png")
		}
		_, err := services.Create(ctx, base, uploads)
		var verrs domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, []string{"images"}, verrs.Fields())
	})

	t.Run("invalid offer", func(t *testing.T) {
		req := base
		req.Offers = []domain.Offer{{Name: "Trial", Price: "free"}}
		_, err := services.Create(ctx, req, []storage.Upload{pngUpload("a.png")})
		var verrs domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.ElementsMatch(t, []string{"offers[0].price", "offers[0].description"}, verrs.Fields())
	})

	t.Run("second image rejected removes the first", func(t *testing.T) {
		bad := pngUpload("b.gif")
		bad.ContentType = "application/pdf"
		_, err := services.Create(ctx, base, []storage.Upload{pngUpload("a.png"), bad})
		assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)
	})

	assert.Empty(t, storedFiles(t, images))

	all, err := services.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
