package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderLineItem is a purchased (product, quantity, unit price) triple.
// Price is the unit price in naira as charged at checkout time.
type OrderLineItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int64              `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

// PurchasedItem is the gateway-side snapshot of a paid line item.
type PurchasedItem struct {
	Name     string  `bson:"name" json:"name"`
	Quantity int64   `bson:"quantity" json:"quantity"`
	Amount   float64 `bson:"amount" json:"amount"`
}

// Order is the durable record of a confirmed payment. Exactly one order
// exists per checkout session; StripeSessionID carries a unique index.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Products        []OrderLineItem    `bson:"products" json:"products"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	StripeSessionID string             `bson:"stripeSessionId" json:"stripeSessionId"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	ItemsPurchased  []PurchasedItem    `bson:"itemsPurchased" json:"itemsPurchased"`
	CreatedAt       time.Time          `bson:"createdAt" json:"created_at"`
}

// CheckoutProduct is a cart line as submitted to POST /payments/checkout-session.
// Price is client-supplied and is what the session is built from; it is not
// re-derived from the catalog.
type CheckoutProduct struct {
	ID       string  `json:"id" binding:"required,objectid"`
	Name     string  `json:"name" binding:"required"`
	Image    string  `json:"image"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Quantity int64   `json:"quantity"`
}

// CreateCheckoutSessionRequest is the payload for POST /payments/checkout-session.
type CreateCheckoutSessionRequest struct {
	Products   []CheckoutProduct `json:"products" binding:"required"`
	CouponCode string            `json:"couponCode"`
}

// CheckoutSuccessRequest is the payload for POST /payments/checkout-success.
type CheckoutSuccessRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// SessionMetadataProduct is the line-item shape embedded in the checkout
// session metadata for post-payment reconciliation.
type SessionMetadataProduct struct {
	ID       string  `json:"id"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}
