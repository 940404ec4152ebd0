package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/service"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/Dhoini/storefront-service/pkg/req"
	"github.com/Dhoini/storefront-service/pkg/res"
	"github.com/gin-gonic/gin"
)

// OrderHandler обработчик для заказов
type OrderHandler struct {
	service service.OrderService
	log     *logger.Logger
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(svc service.OrderService, log *logger.Logger) *OrderHandler {
	return &OrderHandler{service: svc, log: log}
}

// populate reads ?populate=; lists populate unless told otherwise, single reads only on request
func populate(c *gin.Context, def bool) (bool, error) {
	raw, ok := c.GetQuery("populate")
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.NewValidationError("populate", "must be a boolean")
	}
	return v, nil
}

// GetOrders возвращает все заказы с развернутыми товарами и услугами
func (h *OrderHandler) GetOrders(c *gin.Context) {
	expand, err := populate(c, true)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	orders, err := h.service.GetAll(c.Request.Context(), expand)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, orders, http.StatusOK)
}

// GetOrder возвращает заказ по ID
func (h *OrderHandler) GetOrder(c *gin.Context) {
	expand, err := populate(c, false)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), c.Param("id"), expand)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, order, http.StatusOK)
}

// CreateOrder создает заказ
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	body, err := req.HandleBody[domain.OrderRequest](c, h.log)
	if err != nil {
		return
	}

	order, err := h.service.Create(c.Request.Context(), *body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Created %s order with ID: %s", order.OrderType, order.ID)
	res.JsonResponse(c, order, http.StatusCreated)
}

// UpdateOrderStatus меняет только статус заказа
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	body, err := req.HandleBody[domain.StatusRequest](c, h.log)
	if err != nil {
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), body.OrderStatus)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Order %s is now %s", order.ID, order.OrderStatus)
	res.JsonResponse(c, order, http.StatusOK)
}

// DeleteOrder удаляет заказ
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	res.JsonResponse(c, res.MessageResponse{Message: "Order deleted"}, http.StatusOK)
}
