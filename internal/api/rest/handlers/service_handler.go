package handlers

import (
	"net/http"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/service"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/Dhoini/storefront-service/pkg/req"
	"github.com/Dhoini/storefront-service/pkg/res"
	"github.com/gin-gonic/gin"
)

// ServiceHandler обработчик для услуг
type ServiceHandler struct {
	service service.ServiceService
	log     *logger.Logger
}

// NewServiceHandler создает новый обработчик услуг
func NewServiceHandler(svc service.ServiceService, log *logger.Logger) *ServiceHandler {
	return &ServiceHandler{service: svc, log: log}
}

// GetServices возвращает список всех услуг
func (h *ServiceHandler) GetServices(c *gin.Context) {
	services, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, services, http.StatusOK)
}

// GetService возвращает услугу по ID
func (h *ServiceHandler) GetService(c *gin.Context) {
	svc, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, svc, http.StatusOK)
}

// readServiceRequest reads a JSON body or a multipart form whose offers field holds a JSON array
func (h *ServiceHandler) readServiceRequest(c *gin.Context) (domain.ServiceRequest, bool) {
	if !isMultipart(c) {
		body, err := req.HandleBody[domain.ServiceRequest](c, h.log)
		if err != nil {
			return domain.ServiceRequest{}, false
		}
		return *body, true
	}

	body := domain.ServiceRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
	}
	if raw := c.PostForm("offers"); raw != "" {
		offers, err := req.DecodeString[[]domain.Offer](raw)
		if err != nil {
			respondError(c, h.log, domain.NewValidationError("offers", "must be a JSON array of offers"))
			return domain.ServiceRequest{}, false
		}
		body.Offers = offers
	}
	return body, true
}

// CreateService создает услугу; изображения передаются в поле images (не более 5)
func (h *ServiceHandler) CreateService(c *gin.Context) {
	body, ok := h.readServiceRequest(c)
	if !ok {
		return
	}

	headers, err := formFiles(c, "images")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	uploads, closeUploads, err := openUploads(headers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer closeUploads()

	created, err := h.service.Create(c.Request.Context(), body, uploads)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Created service with ID: %s (%d images)", created.ID, len(created.Images))
	res.JsonResponse(c, created, http.StatusCreated)
}

// UpdateService частично обновляет услугу
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	patch, err := req.HandleBody[domain.ServicePatch](c, h.log)
	if err != nil {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), *patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, updated, http.StatusOK)
}

// DeleteService удаляет услугу вместе с ее изображениями
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, res.MessageResponse{Message: "Service deleted"}, http.StatusOK)
}
