package handlers

import (
	"net/http"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/service"
	"github.com/Dhoini/storefront-service/internal/storage"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/Dhoini/storefront-service/pkg/req"
	"github.com/Dhoini/storefront-service/pkg/res"
	"github.com/gin-gonic/gin"
)

// ProductHandler обработчик для товаров
type ProductHandler struct {
	service service.ProductService
	log     *logger.Logger
}

// NewProductHandler создает новый обработчик товаров
func NewProductHandler(svc service.ProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{service: svc, log: log}
}

// GetProducts возвращает список всех товаров
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, products, http.StatusOK)
}

// GetProduct возвращает товар по ID
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, product, http.StatusOK)
}

// CreateProduct создает товар из multipart-формы (поле image) или из JSON без изображения
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var body domain.ProductRequest
	if err := c.ShouldBind(&body); err != nil {
		respondError(c, h.log, domain.NewValidationError("body", err.Error()))
		return
	}

	headers, err := formFiles(c, "image")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(headers) > 1 {
		respondError(c, h.log, domain.NewValidationError("image", "must contain at most 1 items"))
		return
	}

	uploads, closeUploads, err := openUploads(headers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer closeUploads()

	var image *storage.Upload
	if len(uploads) == 1 {
		image = &uploads[0]
	}

	product, err := h.service.Create(c.Request.Context(), body, image)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Created product with ID: %s", product.ID)
	res.JsonResponse(c, product, http.StatusCreated)
}

// UpdateProduct частично обновляет товар
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	patch, err := req.HandleBody[domain.ProductPatch](c, h.log)
	if err != nil {
		return
	}

	product, err := h.service.Update(c.Request.Context(), c.Param("id"), *patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, product, http.StatusOK)
}

// DeleteProduct удаляет товар
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, res.MessageResponse{Message: "Product deleted"}, http.StatusOK)
}
