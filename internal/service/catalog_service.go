package service

import (
	"context"
	"fmt"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/metrics"
	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/internal/storage"
	"github.com/Dhoini/storefront-service/pkg/logger"
)

// ProductService интерфейс сервиса для работы с товарами
type ProductService interface {
	GetAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (domain.Product, error)
	// Create stores the optional image first and keeps its public path in Image.
	Create(ctx context.Context, req domain.ProductRequest, image *storage.Upload) (domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type productService struct {
	repo   repository.ProductRepository
	images storage.ImageStore
	notifier
}

// NewProductService создает новый сервис для работы с товарами
func NewProductService(repo repository.ProductRepository, images storage.ImageStore, m metrics.StorefrontMetrics, log *logger.Logger) ProductService {
	return &productService{
		repo:     repo,
		images:   images,
		notifier: notifier{metrics: m, log: log},
	}
}

func (s *productService) GetAll(ctx context.Context) ([]domain.Product, error) {
	s.log.Debug("Getting all products")
	return s.repo.GetAll(ctx)
}

func (s *productService) GetByID(ctx context.Context, id string) (domain.Product, error) {
	s.log.Debug("Getting product by ID: %s", id)
	return s.repo.GetByID(ctx, id)
}

func (s *productService) Create(ctx context.Context, req domain.ProductRequest, image *storage.Upload) (domain.Product, error) {
	s.log.Debug("Creating product %q", req.Name)

	product := domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}
	if err := domain.Validate(product); err != nil {
		return domain.Product{}, err
	}

	if image != nil {
		path, err := s.images.Save(ctx, *image)
		if err != nil {
			s.imageRejected(err)
			return domain.Product{}, err
		}
		product.Image = path
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		s.removeImages(ctx, product.Image)
		return domain.Product{}, err
	}

	return created, nil
}

func (s *productService) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	s.log.Debug("Updating product with ID: %s", id)

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	patch.Apply(&existing)
	if err := domain.Validate(existing); err != nil {
		return domain.Product{}, err
	}

	return s.repo.Update(ctx, existing)
}

func (s *productService) Delete(ctx context.Context, id string) error {
	s.log.Debug("Deleting product with ID: %s", id)

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.removeImages(ctx, existing.Image)
	return nil
}

// removeImagesFrom deletes stored files. A failure only leaves an orphan file and is logged.
func (n notifier) removeImagesFrom(ctx context.Context, store storage.ImageStore, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := store.Remove(ctx, p); err != nil {
			n.log.Warnw("Failed to remove stored image", "path", p, "error", err)
		}
	}
}

func (s *productService) removeImages(ctx context.Context, paths ...string) {
	s.removeImagesFrom(ctx, s.images, paths...)
}

// ServiceService интерфейс сервиса для работы с услугами
type ServiceService interface {
	GetAll(ctx context.Context) ([]domain.Service, error)
	GetByID(ctx context.Context, id string) (domain.Service, error)
	// Create validates offers as a batch before any image is stored; images keep upload order.
	Create(ctx context.Context, req domain.ServiceRequest, images []storage.Upload) (domain.Service, error)
	Update(ctx context.Context, id string, patch domain.ServicePatch) (domain.Service, error)
	Delete(ctx context.Context, id string) error
}

type serviceService struct {
	repo   repository.ServiceRepository
	images storage.ImageStore
	notifier
}

// NewServiceService создает новый сервис для работы с услугами
func NewServiceService(repo repository.ServiceRepository, images storage.ImageStore, m metrics.StorefrontMetrics, log *logger.Logger) ServiceService {
	return &serviceService{
		repo:     repo,
		images:   images,
		notifier: notifier{metrics: m, log: log},
	}
}

func (s *serviceService) GetAll(ctx context.Context) ([]domain.Service, error) {
	s.log.Debug("Getting all services")
	return s.repo.GetAll(ctx)
}

func (s *serviceService) GetByID(ctx context.Context, id string) (domain.Service, error) {
	s.log.Debug("Getting service by ID: %s", id)
	return s.repo.GetByID(ctx, id)
}

func (s *serviceService) Create(ctx context.Context, req domain.ServiceRequest, images []storage.Upload) (domain.Service, error) {
	s.log.Debug("Creating service %q with %d images", req.Name, len(images))

	if len(images) > domain.MaxServiceImages {
		return domain.Service{}, domain.NewValidationError("images",
			fmt.Sprintf("must contain at most %d items", domain.MaxServiceImages))
	}

	service := domain.Service{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Images:      []string{},
		Offers:      req.Offers,
	}
	if service.Offers == nil {
		service.Offers = []domain.Offer{}
	}
	if err := domain.Validate(service); err != nil {
		return domain.Service{}, err
	}

	for _, img := range images {
		path, err := s.images.Save(ctx, img)
		if err != nil {
			s.imageRejected(err)
			s.removeImages(ctx, service.Images...)
			return domain.Service{}, err
		}
		service.Images = append(service.Images, path)
	}

	created, err := s.repo.Create(ctx, service)
	if err != nil {
		s.removeImages(ctx, service.Images...)
		return domain.Service{}, err
	}

	return created, nil
}

func (s *serviceService) Update(ctx context.Context, id string, patch domain.ServicePatch) (domain.Service, error) {
	s.log.Debug("Updating service with ID: %s", id)

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Service{}, err
	}

	patch.Apply(&existing)
	if err := domain.Validate(existing); err != nil {
		return domain.Service{}, err
	}

	return s.repo.Update(ctx, existing)
}

func (s *serviceService) Delete(ctx context.Context, id string) error {
	s.log.Debug("Deleting service with ID: %s", id)

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.removeImages(ctx, existing.Images...)
	return nil
}

func (s *serviceService) removeImages(ctx context.Context, paths ...string) {
	s.removeImagesFrom(ctx, s.images, paths...)
}
