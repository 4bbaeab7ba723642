package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon is a per-user percentage discount. At most one active coupon exists
// per user; issuing a new one retires the previous.
type Coupon struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code               string             `bson:"code" json:"code"`
	DiscountPercentage int                `bson:"discountPercentage" json:"discountPercentage"`
	ExpirationDate     time.Time          `bson:"expirationDate" json:"expirationDate"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt          time.Time          `bson:"createdAt" json:"created_at"`
}

// Expired reports whether the coupon's expiration date has passed.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpirationDate.Before(now)
}

// ValidateCouponRequest is the payload for POST /coupons/validate.
type ValidateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// CouponView is the projection returned to the cart UI.
type CouponView struct {
	Code               string `json:"code"`
	DiscountPercentage int    `json:"discountPercentage"`
	Message            string `json:"message,omitempty"`
}
