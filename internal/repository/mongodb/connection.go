package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewConnection создает новое подключение к MongoDB
func NewConnection(ctx context.Context, uri string, maxWait time.Duration, log *logger.Logger) (*mongo.Client, error) {
	log.Info("Connecting to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to create mongo client: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxWait

	err = backoff.RetryNotify(
		func() error { return client.Ping(ctx, readpref.Primary()) },
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			log.Warn("MongoDB is not ready, retrying in %s: %v", next, err)
		},
	)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping mongo: %w", err)
	}

	log.Info("Successfully connected to MongoDB")
	return client, nil
}

// EnsureIndexes creates the case-insensitive unique index on customer email
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(customersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("customers_email_key").
			SetUnique(true).
			SetCollation(emailCollation),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

// NewStore connects, creates indexes and wires the four repositories
func NewStore(ctx context.Context, uri, database string, maxWait time.Duration, log *logger.Logger) (*repository.Store, error) {
	client, err := NewConnection(ctx, uri, maxWait, log)
	if err != nil {
		return nil, err
	}

	db := client.Database(database)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return repository.NewStore(
		NewMongoCustomerRepository(db, log),
		NewMongoProductRepository(db, log),
		NewMongoServiceRepository(db, log),
		NewMongoOrderRepository(db, log),
		func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
		client.Disconnect,
	), nil
}
