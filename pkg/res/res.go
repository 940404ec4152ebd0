package res

import (
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse представляет формат JSON-ответа для ошибок.
type ErrorResponse struct {
	Error   string `json:"error"`             // Сообщение об ошибке (для пользователя)
	Details any    `json:"details,omitempty"` // Детали ошибки (например, ошибки валидации)
}

// MessageResponse короткий ответ без данных, например после удаления.
type MessageResponse struct {
	Message string `json:"message"`
}

// JsonResponse отправляет JSON-ответ с заданным статусом.
func JsonResponse(c *gin.Context, data any, status int) {
	c.JSON(status, data)
}

// JsonErrorResponse отправляет JSON ответ ошибки и прерывает цепочку обработчиков.
// Server-side failures are logged at error level, client errors at debug.
func JsonErrorResponse(c *gin.Context, errResponse ErrorResponse, status int, log *logger.Logger) {
	c.AbortWithStatusJSON(status, errResponse)
	if status >= 500 {
		log.Errorw("Error response", "status", status, "path", c.FullPath(), "error", errResponse.Error)
		return
	}
	log.Debugw("Error response", "status", status, "path", c.FullPath(), "error", errResponse.Error)
}
