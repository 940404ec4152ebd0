package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhoini/storefront-service/config"
	grpcapi "github.com/Dhoini/storefront-service/internal/api/grpc"
	"github.com/Dhoini/storefront-service/internal/api/rest"
	"github.com/Dhoini/storefront-service/internal/amqp"
	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/events"
	"github.com/Dhoini/storefront-service/internal/kafka"
	"github.com/Dhoini/storefront-service/internal/metrics"
	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/internal/repository/mongodb"
	"github.com/Dhoini/storefront-service/internal/repository/postgres"
	"github.com/Dhoini/storefront-service/internal/service"
	"github.com/Dhoini/storefront-service/internal/storage"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// App представляет собой контейнер для всех компонентов приложения
type App struct {
	cfg *config.Config
	log *logger.Logger

	registry  *prometheus.Registry
	system    metrics.SystemMetrics
	store     *repository.Store
	cache     *repository.RedisCache
	publisher events.Publisher

	httpServer *rest.Server
	grpcServer *grpcapi.Server
}

// New создает и инициализирует приложение: хранилище, кеш, события, сервисы и транспорт.
// Optional collaborators (cache, event bus) that fail to connect are logged and skipped.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log, registry: prometheus.NewRegistry()}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.store = store

	storefrontMetrics := metrics.NewStorefrontMetrics(a.registry, log)
	if cfg.Metrics.Enabled {
		a.system = metrics.NewSystemMetrics(a.registry, log)
	}

	products, services := store.Products, store.Services
	if cfg.Redis.Enabled {
		cache, err := repository.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			cfg.Redis.TTL, cfg.Database.Connect, log)
		if err != nil {
			log.Warnw("Failed to initialize Redis cache, continuing without caching", "error", err)
		} else {
			a.cache = cache
			products = repository.NewCachedProductRepository(products, cache, log)
			services = repository.NewCachedServiceRepository(services, cache, log)
			log.Infow("Using cached catalog repositories", "addr", cfg.Redis.Addr)
		}
	}

	a.publisher = openPublisher(ctx, cfg, log)

	images, err := storage.NewLocalStore(cfg.Storage.Dir, cfg.Storage.PublicPrefix, cfg.Storage.MaxImageBytes, log)
	if err != nil {
		a.closeAll(ctx)
		return nil, err
	}

	policy := service.OrderPolicy{
		StrictReferences: cfg.Orders.StrictReferences,
		Status:           domain.StatusPolicy{Strict: cfg.Orders.StrictStatus},
	}
	orders := service.NewOrderService(store, policy, service.UTCClock, a.publisher, storefrontMetrics, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	routerCfg := rest.RouterConfig{
		PublicPrefix: cfg.Storage.PublicPrefix,
		StaticDir:    images.Dir(),
		Metrics:      storefrontMetrics,
	}
	if cfg.Metrics.Enabled {
		routerCfg.Registry = a.registry
	}

	router := rest.SetupRouter(rest.Services{
		Customers: service.NewCustomerService(store, orders, a.publisher, storefrontMetrics, log),
		Products:  service.NewProductService(products, images, storefrontMetrics, log),
		Services:  service.NewServiceService(services, images, storefrontMetrics, log),
		Orders:    orders,
		Health:    store,
	}, routerCfg, log)
	a.httpServer = rest.NewServer(router, cfg, log)

	if cfg.GRPC.Enabled {
		a.grpcServer, err = grpcapi.NewServer(cfg, store, log)
		if err != nil {
			a.closeAll(ctx)
			return nil, err
		}
	}

	return a, nil
}

// openStore подключается к хранилищу, выбранному в конфигурации
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repository.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return postgres.NewStore(ctx, cfg.Database.GetDSN(), cfg.Database.Connect, log)
	case config.DriverMongo:
		return mongodb.NewStore(ctx, cfg.Database.MongoURI, cfg.Database.MongoDB, cfg.Database.Connect, log)
	case config.DriverMemory:
		log.Warn("Using the in-memory store, data is lost on restart")
		return repository.NewMemoryStore(log), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// openPublisher подключается к шине событий. Events are best effort, so a failure falls back to a no-op publisher.
func openPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger) events.Publisher {
	switch cfg.Events.Driver {
	case config.EventsKafka:
		kafkaCfg := kafka.NewConfig(cfg.Events.KafkaBrokers, cfg.Events.TopicPrefix)
		if cfg.Events.EnsureTopics {
			if err := kafka.EnsureTopics(ctx, kafkaCfg, log); err != nil {
				log.Warnw("Failed to ensure Kafka topics", "error", err)
			}
		}
		producer, err := kafka.Dial(kafkaCfg, log)
		if err != nil {
			log.Errorw("Failed to initialize Kafka producer, continuing without event publishing", "error", err)
			return events.NopPublisher{}
		}
		log.Infow("Kafka producer initialized", "brokers", cfg.Events.KafkaBrokers)
		return producer

	case config.EventsAMQP:
		publisher, err := amqp.Dial(cfg.Events.AMQPURL, cfg.Events.AMQPExchange, log)
		if err != nil {
			log.Errorw("Failed to initialize AMQP publisher, continuing without event publishing", "error", err)
			return events.NopPublisher{}
		}
		log.Infow("AMQP publisher initialized", "exchange", cfg.Events.AMQPExchange)
		return publisher

	default:
		return events.NopPublisher{}
	}
}

// Run запускает серверы и блокируется до отмены ctx или ошибки одного из серверов, затем выполняет shutdown
func (a *App) Run(ctx context.Context) error {
	if a.system != nil {
		a.system.StartRecording(a.cfg.Metrics.SystemInterval)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.httpServer.Start()
	}()
	if a.grpcServer != nil {
		go func() {
			errCh <- a.grpcServer.Start()
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Infow("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			runErr = err
			a.log.Errorw("Server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	return errors.Join(runErr, a.Shutdown(shutdownCtx))
}

// Shutdown останавливает серверы и освобождает ресурсы в обратном порядке
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.grpcServer != nil {
		a.grpcServer.Stop()
	}

	errs = append(errs, a.closeAll(ctx))

	a.log.Infow("Cleanup finished")
	return errors.Join(errs...)
}

func (a *App) closeAll(ctx context.Context) error {
	var errs []error

	if a.system != nil {
		a.system.Stop()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}

	for _, err := range errs {
		a.log.Errorw("Cleanup error", "error", err)
	}
	return errors.Join(errs...)
}
