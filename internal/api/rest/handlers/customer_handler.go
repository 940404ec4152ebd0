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

// CustomerHandler обработчик для клиентов
type CustomerHandler struct {
	service service.CustomerService
	log     *logger.Logger
}

// NewCustomerHandler создает новый обработчик клиентов
func NewCustomerHandler(svc service.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		log:     log,
	}
}

// GetCustomers возвращает список всех клиентов
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	customers, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Debug("Returned %d customers", len(customers))
	res.JsonResponse(c, customers, http.StatusOK)
}

// GetCustomer возвращает клиента по ID
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	res.JsonResponse(c, customer, http.StatusOK)
}

// RegisterCustomer регистрирует клиента, запоминая IP-адрес запроса
func (h *CustomerHandler) RegisterCustomer(c *gin.Context) {
	body, err := req.HandleBody[domain.CustomerRequest](c, h.log)
	if err != nil {
		return
	}

	customer, err := h.service.Register(c.Request.Context(), *body, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Registered customer with ID: %s", customer.ID)
	res.JsonResponse(c, customer, http.StatusCreated)
}

// UpdateCustomer обновляет существующего клиента
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	patch, err := req.HandleBody[domain.CustomerPatch](c, h.log)
	if err != nil {
		return
	}

	customer, err := h.service.Update(c.Request.Context(), c.Param("id"), *patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Updated customer with ID: %s", customer.ID)
	res.JsonResponse(c, customer, http.StatusOK)
}

// DeleteCustomer удаляет клиента
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Deleted customer with ID: %s", id)
	res.JsonResponse(c, res.MessageResponse{Message: "Customer deleted"}, http.StatusOK)
}

// PlaceOrder создает заказ и сразу добавляет его в историю клиента
func (h *CustomerHandler) PlaceOrder(c *gin.Context) {
	body, err := req.HandleBody[domain.OrderRequest](c, h.log)
	if err != nil {
		return
	}

	placed, err := h.service.PlaceOrder(c.Request.Context(), c.Param("id"), *body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Placed order %s for customer %s", placed.Order.ID, placed.Customer.ID)
	res.JsonResponse(c, placed, http.StatusCreated)
}

// AttachOrder добавляет существующий заказ в историю клиента
func (h *CustomerHandler) AttachOrder(c *gin.Context) {
	customer, err := h.service.AttachOrder(c.Request.Context(), c.Param("id"), c.Param("orderId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	res.JsonResponse(c, customer, http.StatusOK)
}
