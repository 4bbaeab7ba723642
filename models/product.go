package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Image holds the public URL of the uploaded
// asset in the image store.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Image       string             `bson:"image" json:"image"`
	Category    string             `bson:"category" json:"category"`
	IsFeatured  bool               `bson:"isFeatured" json:"isFeatured"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
}

// CartProduct is a product joined with its cart quantity, returned by
// GET /cart.
type CartProduct struct {
	Product  `bson:",inline"`
	Quantity int `json:"quantity"`
}

// CreateProductRequest is the payload for POST /products (admin only).
// Image is an optional base64 data URL, uploaded to the image store.
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Image       string  `json:"image"`
	Category    string  `json:"category" binding:"required"`
}
