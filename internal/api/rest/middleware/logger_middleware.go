package middleware

import (
	"time"

	"github.com/Dhoini/storefront-service/internal/metrics"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// LoggerMiddleware создает middleware для логирования запросов и записи HTTP-метрик.
// m may be nil when metrics are disabled.
func LoggerMiddleware(log *logger.Logger, m metrics.StorefrontMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Время начала запроса
		startTime := time.Now()

		// Обработка запроса
		c.Next()

		// Длительность запроса
		latencyTime := time.Since(startTime)

		// Получаем код статуса
		statusCode := c.Writer.Status()

		if m != nil {
			// Route templates keep label cardinality bounded; unmatched paths share one label
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTPRequest(c.Request.Method, route, statusCode, latencyTime)
		}

		// Логируем информацию о запросе
		switch {
		case statusCode >= 500:
			log.Error("[%s] %s %d %s %s",
				c.Request.Method,
				c.Request.RequestURI,
				statusCode,
				latencyTime.String(),
				c.ClientIP(),
			)
		case statusCode >= 400:
			log.Warn("[%s] %s %d %s %s",
				c.Request.Method,
				c.Request.RequestURI,
				statusCode,
				latencyTime.String(),
				c.ClientIP(),
			)
		default:
			log.Info("[%s] %s %d %s %s",
				c.Request.Method,
				c.Request.RequestURI,
				statusCode,
				latencyTime.String(),
				c.ClientIP(),
			)
		}
	}
}
