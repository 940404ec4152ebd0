package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Dhoini/storefront-service/config"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// ServiceName имя сервиса, под которым публикуется его состояние
const ServiceName = "storefront.Storefront"

const defaultCheckInterval = 10 * time.Second

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server gRPC сервер со стандартным health-сервисом
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	store      Pinger
	addr       string
	interval   time.Duration
	log        *logger.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewServer создает новый gRPC сервер. Health status follows store pings.
func NewServer(cfg *config.Config, store Pinger, log *logger.Logger) (*Server, error) {
	// Опции для gRPC
	var opts []grpc.ServerOption

	// Настройки keepalive для gRPC
	kaParams := keepalive.ServerParameters{
		MaxConnectionIdle:     time.Minute * 5,  // Максимальное время простоя соединения
		MaxConnectionAge:      time.Hour,        // Максимальное время жизни соединения
		MaxConnectionAgeGrace: time.Minute * 5,  // Дополнительное время для завершения запросов при закрытии соединения
		Time:                  time.Minute * 2,  // Время между пингами для проверки активности
		Timeout:               time.Second * 20, // Таймаут после которого соединение закрывается если нет ответа на пинг
	}

	opts = append(opts, grpc.KeepaliveParams(kaParams))

	// Настройка TLS, если необходимо
	if cfg.GRPC.UseTLS {
		creds, err := credentials.NewServerTLSFromFile(cfg.GRPC.CertFile, cfg.GRPC.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)
	healthServer := health.NewServer()

	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Включаем reflection для удобства отладки (например, с помощью grpcurl)
	reflection.Register(grpcServer)

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		addr:       fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port),
		interval:   defaultCheckInterval,
		log:        log,
		stop:       make(chan struct{}),
	}, nil
}

// Start запускает gRPC сервер на настроенном адресе
func (s *Server) Start() error {
	s.log.Info("Starting gRPC server on %s", s.addr)

	// Создаем слушателя TCP
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return s.Serve(listener)
}

// Serve обслуживает соединения listener до вызова Stop
func (s *Server) Serve(listener net.Listener) error {
	s.CheckNow(context.Background())
	go s.watch()

	if err := s.grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// CheckNow pings the store once and publishes the result
func (s *Server) CheckNow(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, s.interval/2)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warnw("Store ping failed, reporting NOT_SERVING", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

func (s *Server) watch() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.CheckNow(context.Background())
		}
	}
}

// Stop останавливает gRPC сервер
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.log.Info("Stopping gRPC server")
		close(s.stop)
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
	})
}
