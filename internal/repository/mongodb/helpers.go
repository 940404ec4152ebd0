package mongodb

import (
	"context"

	"github.com/Dhoini/storefront-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// findAll decodes the whole collection in insertion order
func findAll(ctx context.Context, coll *mongo.Collection, out any) error {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func deleteByID(ctx context.Context, coll *mongo.Collection, entity, id string) error {
	oid, err := parseObjectID(entity, id)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.NewStoreError("delete "+entity, err)
	}
	if res.DeletedCount == 0 {
		return domain.NewNotFoundError(entity, id)
	}
	return nil
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func insertedID(res *mongo.InsertOneResult) primitive.ObjectID {
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid
}
