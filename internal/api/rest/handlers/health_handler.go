package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/Dhoini/storefront-service/pkg/res"
	"github.com/gin-gonic/gin"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обработчик для проверки работоспособности сервиса
type HealthHandler struct {
	store Pinger
	log   *logger.Logger
}

// NewHealthHandler создает обработчик проверки работоспособности
func NewHealthHandler(store Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

// HealthCheck отвечает 200, пока хранилище доступно, иначе 503
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warnw("Health check failed", "error", err)
		res.JsonResponse(c, gin.H{
			"status": "UNAVAILABLE",
			"time":   time.Now().Format(time.RFC3339),
		}, http.StatusServiceUnavailable)
		return
	}

	res.JsonResponse(c, gin.H{
		"status": "OK",
		"time":   time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}
