package rest

import (
	"github.com/Dhoini/storefront-service/internal/api/rest/handlers"
	"github.com/Dhoini/storefront-service/internal/api/rest/middleware"
	"github.com/Dhoini/storefront-service/internal/metrics"
	"github.com/Dhoini/storefront-service/internal/service"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services собирает сервисы, которые обслуживает HTTP API
type Services struct {
	Customers service.CustomerService
	Products  service.ProductService
	Services  service.ServiceService
	Orders    service.OrderService
	Health    handlers.Pinger
}

// RouterConfig параметры маршрутизатора
type RouterConfig struct {
	// PublicPrefix is the URL prefix stored images are served under, StaticDir the directory behind it
	PublicPrefix string
	StaticDir    string
	// Registry is nil when metrics are disabled
	Registry *prometheus.Registry
	Metrics  metrics.StorefrontMetrics
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(svc Services, cfg RouterConfig, log *logger.Logger) *gin.Engine {
	r := gin.New()

	// Подключение middleware
	r.Use(middleware.LoggerMiddleware(log, cfg.Metrics))
	r.Use(gin.Recovery())

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.NewHealthHandler(svc.Health, log).HealthCheck)

	// Prometheus метрики
	if cfg.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	// Загруженные изображения
	if cfg.StaticDir != "" {
		r.Static(cfg.PublicPrefix, cfg.StaticDir)
	}

	// Инициализация обработчиков
	customerHandler := handlers.NewCustomerHandler(svc.Customers, log)
	productHandler := handlers.NewProductHandler(svc.Products, log)
	serviceHandler := handlers.NewServiceHandler(svc.Services, log)
	orderHandler := handlers.NewOrderHandler(svc.Orders, log)

	api := r.Group("/api")
	{
		// Клиенты
		customers := api.Group("/customers")
		{
			customers.GET("", customerHandler.GetCustomers)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.POST("", customerHandler.RegisterCustomer)
			customers.PUT("/:id", customerHandler.UpdateCustomer)
			customers.DELETE("/:id", customerHandler.DeleteCustomer)
			customers.POST("/:id/orders", customerHandler.PlaceOrder)
			customers.PUT("/:id/orders/:orderId", customerHandler.AttachOrder)
		}

		// Товары
		products := api.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", productHandler.CreateProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
		}

		// Услуги
		services := api.Group("/services")
		{
			services.GET("", serviceHandler.GetServices)
			services.GET("/:id", serviceHandler.GetService)
			services.POST("", serviceHandler.CreateService)
			services.PUT("/:id", serviceHandler.UpdateService)
			services.DELETE("/:id", serviceHandler.DeleteService)
		}

		// Заказы
		orders := api.Group("/orders")
		{
			orders.GET("", orderHandler.GetOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("", orderHandler.CreateOrder)
			orders.PUT("/:id", orderHandler.UpdateOrderStatus)
			orders.DELETE("/:id", orderHandler.DeleteOrder)
		}
	}

	return r
}
