package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	Register("20260101000000_user_indexes", userIndexes)
	Register("20260101000001_product_indexes", productIndexes)
	Register("20260101000002_order_indexes", orderIndexes)
}

// -------- 0000: users --------

func userIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Reset-token lookups filter on the digest plus expiry.
			Keys: bson.D{{Key: "resetPasswordToken", Value: 1}},
		},
	})
	return err
}

// -------- 0001: products --------

func productIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("products").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	return err
}

// -------- 0002: orders --------

func orderIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("orders").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "orderStatus", Value: 1}}},
	})
	return err
}
