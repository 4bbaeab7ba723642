package repository

import (
	"context"
	"time"

	"github.com/kevinleven52/Ac.Connect/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CouponRepository defines data access for per-user coupons.
type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.Coupon, error)
	FindActiveByCodeAndUser(ctx context.Context, code string, userID primitive.ObjectID) (*models.Coupon, error)
	Deactivate(ctx context.Context, code string, userID primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// MongoCouponRepository implements CouponRepository on the coupons collection.
type MongoCouponRepository struct {
	collection *mongo.Collection
}

// NewMongoCouponRepository creates a new MongoCouponRepository.
func NewMongoCouponRepository(db *mongo.Database) CouponRepository {
	return &MongoCouponRepository{collection: db.Collection("coupons")}
}

func (r *MongoCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	coupon.CreatedAt = time.Now().UTC()
	res, err := r.collection.InsertOne(ctx, coupon)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		coupon.ID = oid
	}
	return nil
}

func (r *MongoCouponRepository) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "isActive": true}).Decode(&coupon)
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *MongoCouponRepository) FindActiveByCodeAndUser(ctx context.Context, code string, userID primitive.ObjectID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.collection.FindOne(ctx, bson.M{"code": code, "userId": userID, "isActive": true}).Decode(&coupon)
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Deactivate marks the coupon matching code and owner as used.
func (r *MongoCouponRepository) Deactivate(ctx context.Context, code string, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"code": code, "userId": userID},
		bson.M{"$set": bson.M{"isActive": false}},
	)
	return err
}

// DeleteByUser removes any coupon owned by the user. Issuing a replacement
// is delete-then-create, preserving the single-active-coupon invariant.
func (r *MongoCouponRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
