package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// Префиксы ключей для различных типов данных
	productKeyPrefix = "product:"
	serviceKeyPrefix = "service:"
	productsListKey  = "products:all"
	servicesListKey  = "services:all"

	// TTL для кэша
	defaultCacheTTL = 15 * time.Minute
)

// RedisCache хранит JSON-представления сущностей в Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisCache создает клиент Redis и проверяет соединение, повторяя попытки до maxWait
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl, maxWait time.Duration, log *logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxWait

	// Проверяем соединение с Redis
	err := backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		_ = client.Close()
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", addr)
	return NewRedisCacheWithClient(client, ttl, log), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Close закрывает соединение с Redis
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping проверяет соединение с Redis
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// get decodes the value stored under key into dest. A miss returns false and no error.
func (c *RedisCache) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Ключ не найден в кеше
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) del(ctx context.Context, keys ...string) error {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete %v from cache: %w", keys, err)
	}
	return nil
}
