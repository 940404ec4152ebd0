package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dhoini/storefront-service/config"
	grpcapi "github.com/Dhoini/storefront-service/internal/api/grpc"
	"github.com/Dhoini/storefront-service/internal/app"
	"github.com/Dhoini/storefront-service/pkg/logger"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	configDir := flag.String("config", ".", "directory containing config.yml")
	healthcheck := flag.Bool("healthcheck", false, "query the gRPC health service and exit")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log := initLogger(cfg)
	defer func() { _ = log.Sync() }()

	if *healthcheck {
		os.Exit(runHealthcheck(cfg, log))
	}

	log.Infow("Storefront service starting up...",
		"env", cfg.App.Env,
		"store", cfg.Database.Driver,
		"events", cfg.Events.Driver,
	)

	// Контекст отменяется по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("Failed to initialize application", "error", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Errorw("Application stopped with error", "error", err)
		os.Exit(1)
	}

	log.Infow("Goodbye!")
}

// initLogger инициализирует логгер: JSON в production, иначе консольный формат
func initLogger(cfg *config.Config) *logger.Logger {
	level := logger.ParseLevel(cfg.Logging.Level)
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = logger.ParseLevel(env)
	}

	format := logger.FormatConsole
	if cfg.IsProduction() {
		format = logger.FormatJSON
	}
	return logger.NewWithWriter(level, format, os.Stdout)
}

// runHealthcheck is used by container health probes; it returns the process exit code
func runHealthcheck(cfg *config.Config, log *logger.Logger) int {
	opts := grpcapi.DefaultClientOptions()
	opts.Address = fmt.Sprintf("127.0.0.1:%s", cfg.GRPC.Port)
	opts.UseTLS = cfg.GRPC.UseTLS
	opts.KeepAlive = false

	client, err := grpcapi.NewClient(opts, log)
	if err != nil {
		log.Errorw("Healthcheck failed", "error", err)
		return 1
	}
	defer client.Close()

	status, err := client.Check(context.Background(), grpcapi.ServiceName)
	if err != nil || status != healthpb.HealthCheckResponse_SERVING {
		log.Errorw("Service is not healthy", "status", status.String(), "error", err)
		return 1
	}
	return 0
}
