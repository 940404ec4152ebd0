package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// NewConnection создает новое подключение к PostgreSQL.
// The first ping is retried with exponential backoff until maxWait elapses.
func NewConnection(ctx context.Context, connString string, maxWait time.Duration, log *logger.Logger) (*pgxpool.Pool, error) {
	log.Info("Connecting to PostgreSQL")

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Настраиваем пул соединений
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxWait

	// Проверяем подключение
	err = backoff.RetryNotify(
		func() error { return pool.Ping(ctx) },
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			log.Warn("PostgreSQL is not ready, retrying in %s: %v", next, err)
		},
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log.Info("Successfully connected to PostgreSQL")
	return pool, nil
}

// NewStore opens the pool, applies the schema and wires the four repositories.
func NewStore(ctx context.Context, connString string, maxWait time.Duration, log *logger.Logger) (*repository.Store, error) {
	pool, err := NewConnection(ctx, connString, maxWait, log)
	if err != nil {
		return nil, err
	}

	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		pool.Close()
		return nil, err
	}

	return repository.NewStore(
		NewPostgresCustomerRepository(db, log),
		NewPostgresProductRepository(db, log),
		NewPostgresServiceRepository(db, log),
		NewPostgresOrderRepository(db, log),
		pool.Ping,
		func(context.Context) error {
			err := db.Close()
			pool.Close()
			return err
		},
	), nil
}
