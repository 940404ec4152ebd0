package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoCustomerRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns object id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoCustomerRepository(mt.DB, logger.Nop())

		c, err := repo.Create(ctx, domain.Customer{Email: "ada@example.com", Name: "Ada"})
		require.NoError(mt, err)
		assert.Len(mt, c.ID, 24)
		assert.Equal(mt, []string{}, c.Orders)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: customers index: customers_email_key",
		}))
		repo := NewMongoCustomerRepository(mt.DB, logger.Nop())

		_, err := repo.Create(ctx, domain.Customer{Email: "ada@example.com"})
		assert.ErrorIs(mt, err, domain.ErrDuplicateKey)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		created := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.customers", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "email", Value: "ada@example.com"},
			{Key: "ipAddress", Value: "10.0.0.1"},
			{Key: "orders", Value: bson.A{"o-1", "o-2"}},
			{Key: "createdAt", Value: created},
		}))
		repo := NewMongoCustomerRepository(mt.DB, logger.Nop())

		c, err := repo.GetByID(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), c.ID)
		assert.Equal(mt, []string{"o-1", "o-2"}, c.Orders)
		assert.Equal(mt, "10.0.0.1", c.IPAddress)
		assert.True(mt, created.Equal(c.CreatedAt))
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.customers", mtest.FirstBatch))
		repo := NewMongoCustomerRepository(mt.DB, logger.Nop())

		_, err := repo.GetByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		repo := NewMongoCustomerRepository(mt.DB, logger.Nop())

		_, err := repo.GetByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, domain.ErrInvalidIdentifier)
		assert.ErrorIs(mt, repo.Delete(ctx, "xyz"), domain.ErrInvalidIdentifier)
	})

	mt.Run("append order returns updated history", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: oid},
			{Key: "email", Value: "ada@example.com"},
			{Key: "orders", Value: bson.A{"o-1"}},
		}}))
		repo := NewMongoCustomerRepository(mt.DB, logger.Nop())

		c, err := repo.AppendOrder(ctx, oid.Hex(), "o-1")
		require.NoError(mt, err)
		assert.Equal(mt, []string{"o-1"}, c.Orders)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		repo := NewMongoCustomerRepository(mt.DB, logger.Nop())

		err := repo.Delete(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})
}

func TestMongoServiceRepository_GetAll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes offers", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.services", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "name", Value: "Yoga"},
				{Key: "images", Value: bson.A{"/public/1-a.png"}},
				{Key: "offers", Value: bson.A{bson.D{
					{Key: "name", Value: "Trial"},
					{Key: "price", Value: "5"},
					{Key: "description", Value: "First visit"},
				}}},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "name", Value: "Massage"},
			},
		))
		repo := NewMongoServiceRepository(mt.DB, logger.Nop())

		services, err := repo.GetAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, services, 2)
		assert.Equal(mt, []domain.Offer{{Name: "Trial", Price: "5", Description: "First visit"}}, services[0].Offers)
		assert.Equal(mt, []string{}, services[1].Images)
		assert.Equal(mt, []domain.Offer{}, services[1].Offers)
	})
}

func TestMongoOrderRepository_UpdateStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing order", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, "storefront.orders", mtest.FirstBatch),
		)
		repo := NewMongoOrderRepository(mt.DB, logger.Nop())

		_, err := repo.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), domain.StatusPending, domain.StatusConfirmed)
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})

	mt.Run("status moved before the write", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, "storefront.orders", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: id},
				{Key: "name", Value: "Ada"},
				{Key: "orderStatus", Value: "Cancelled"},
			}),
		)
		repo := NewMongoOrderRepository(mt.DB, logger.Nop())

		_, err := repo.UpdateStatus(context.Background(), id.Hex(), domain.StatusPending, domain.StatusConfirmed)
		assert.ErrorIs(mt, err, domain.ErrValidation)
	})

	mt.Run("create keeps the fields", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoOrderRepository(mt.DB, logger.Nop())
		date := time.Date(2026, 10, 16, 12, 0, 0, 123456789, time.UTC)

		o, err := repo.Create(context.Background(), domain.Order{Name: "Ada", OrderStatus: domain.StatusPending, OrderDate: date})
		require.NoError(mt, err)
		assert.Len(mt, o.ID, 24)
		assert.Equal(mt, domain.StatusPending, o.OrderStatus)
		assert.Equal(mt, date.Truncate(time.Millisecond), o.OrderDate)
	})
}
