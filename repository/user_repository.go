package repository

import (
	"context"
	"time"

	"github.com/kevinleven52/Ac.Connect/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines data access for users and their embedded carts.
// Cart mutations are single field-level updates so concurrent requests from
// the same user cannot lose writes against each other.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)

	GetCartItems(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error)
	IncrementCartItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error)
	PushCartItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) error
	SetCartItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error)
	PullCartItem(ctx context.Context, userID, productID primitive.ObjectID) error
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

// MongoUserRepository implements UserRepository on the users collection.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// Create inserts a new user. A duplicate email surfaces as a mongo duplicate
// key error for the caller to translate.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.CartItems == nil {
		user.CartItems = []models.CartItem{}
	}

	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"role": role})
}

// GetCartItems loads only the cart array of a user document.
func (r *MongoUserRepository) GetCartItems(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return user.CartItems, nil
}

// IncrementCartItem atomically adds quantity to an existing cart entry.
// Returns false when no entry matched, in which case the caller appends one.
func (r *MongoUserRepository) IncrementCartItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "cartItems.product": productID},
		bson.M{
			"$inc": bson.M{"cartItems.$.quantity": quantity},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// PushCartItem appends a new cart entry.
func (r *MongoUserRepository) PushCartItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"cartItems": item},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetCartItemQuantity atomically replaces the quantity of an existing entry.
// Returns false when the entry is not in the cart.
func (r *MongoUserRepository) SetCartItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "cartItems.product": productID},
		bson.M{
			"$set": bson.M{
				"cartItems.$.quantity": quantity,
				"updatedAt":            time.Now().UTC(),
			},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// PullCartItem removes the entry for a product, if present.
func (r *MongoUserRepository) PullCartItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"cartItems": bson.M{"product": productID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	return err
}

// ClearCart empties the user's cart.
func (r *MongoUserRepository) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set": bson.M{
				"cartItems": []models.CartItem{},
				"updatedAt": time.Now().UTC(),
			},
		},
	)
	return err
}
