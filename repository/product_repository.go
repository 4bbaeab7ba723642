package repository

import (
	"context"
	"time"

	"github.com/kevinleven52/Ac.Connect/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository defines data access for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	FindFeatured(ctx context.Context) ([]models.Product, error)
	FindByCategory(ctx context.Context, category string) ([]models.Product, error)
	Sample(ctx context.Context, size int) ([]models.Product, error)
	SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Count(ctx context.Context) (int64, error)
}

// MongoProductRepository implements ProductRepository on the products collection.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *MongoProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoProductRepository) FindFeatured(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{"isFeatured": true})
}

func (r *MongoProductRepository) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.find(ctx, bson.M{"category": category})
}

// Sample returns a random selection of products via $sample.
func (r *MongoProductRepository) Sample(ctx context.Context, size int) ([]models.Product, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "name", Value: 1},
			{Key: "description", Value: 1},
			{Key: "price", Value: 1},
			{Key: "image", Value: 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SetFeatured flips the featured flag and returns the updated document.
func (r *MongoProductRepository) SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (*models.Product, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isFeatured": featured, "updatedAt": time.Now().UTC()}},
		after,
	).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a product and returns the removed document so the caller
// can clean up its stored image.
func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
