package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Connect opens a MongoDB connection, pings it, and returns the named
// database handle.
func Connect(mongoURL, dbName string) (*mongo.Database, error) {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(timeoutCtx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	zap.L().Info("Connected to MongoDB", zap.String("database", dbName))
	return client.Database(dbName), nil
}

// EnsureIndexes creates the unique indexes the store depends on: user email,
// coupon code, and the order checkout-session id that makes order creation
// idempotent per session.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	if _, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	if _, err := db.Collection("coupons").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("coupons code index: %w", err)
	}

	if _, err := db.Collection("orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "stripeSessionId", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("orders session index: %w", err)
	}

	return nil
}

// Close disconnects the client behind a database handle.
func Close(db *mongo.Database) error {
	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Client().Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
