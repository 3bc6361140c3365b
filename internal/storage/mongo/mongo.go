// Package mongo stores each collection as documents in MongoDB. It is the
// default backend.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace/internal/store"
)

const (
	usersCollection    = "users"
	shopsCollection    = "shops"
	productsCollection = "products"
	ordersCollection   = "orders"
)

// New wires a Store over db. Call EnsureIndexes once at startup.
func New(db *mongo.Database) *store.Store {
	return &store.Store{
		Users:    &Users{col: db.Collection(usersCollection)},
		Shops:    &Shops{col: db.Collection(shopsCollection)},
		Products: &Products{col: db.Collection(productsCollection)},
		Orders:   &Orders{col: db.Collection(ordersCollection)},
		Close:    db.Client().Disconnect,
	}
}

// EnsureIndexes creates the unique email constraints and the lookup indexes
// used by the listing queries.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		shopsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "user._id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func newID() string { return primitive.NewObjectID().Hex() }

func byID(id string) bson.M { return bson.M{"_id": id} }

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return err
	}
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
}
