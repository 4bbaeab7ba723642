package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/repository"
	"github.com/stripe/stripe-go/v80"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	checkoutCurrency = "ngn"

	// autoCouponThreshold is the pre-discount total (in kobo) at which a
	// buyer earns a fresh gift coupon for their next purchase.
	autoCouponThreshold int64 = 100_000 // ₦1,000
	// gatewayDiscountMin is the post-discount total (in kobo) below which no
	// gateway-side discount object is attached to the session.
	gatewayDiscountMin int64 = 2_000_000 // ₦20,000
)

// CheckoutSessionResponse is returned from session creation. TotalAmount is
// the discounted total in naira.
type CheckoutSessionResponse struct {
	SessionID   string  `json:"sessionId"`
	TotalAmount float64 `json:"totalAmount"`
}

// CheckoutResult is returned after a payment is confirmed.
type CheckoutResult struct {
	OrderID string `json:"orderId"`
}

// CheckoutService drives the Cart → CheckoutSessionCreated →
// PaymentConfirmed(Order) | PaymentRejected state machine.
//
// Totals are computed from the client-supplied per-item prices, matching the
// upstream API contract; nothing here re-derives prices from the catalog.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, user *models.User, req *models.CreateCheckoutSessionRequest) (*CheckoutSessionResponse, *ServiceError)
	CheckoutSuccess(ctx context.Context, sessionID string) (*CheckoutResult, *ServiceError)
}

type checkoutServiceImpl struct {
	gateway   StripeClient
	coupons   CouponService
	orders    repository.OrderRepository
	clientURL string
	logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. clientURL is the
// storefront origin Stripe redirects back to.
func NewCheckoutService(gateway StripeClient, coupons CouponService, orders repository.OrderRepository, clientURL string, logger *zap.Logger) CheckoutService {
	return &checkoutServiceImpl{
		gateway:   gateway,
		coupons:   coupons,
		orders:    orders,
		clientURL: clientURL,
		logger:    logger,
	}
}

// CreateCheckoutSession builds a payment-gateway session from the submitted
// cart lines and an optional coupon. A large enough pre-discount total also
// earns the buyer a new gift coupon as a side effect.
func (s *checkoutServiceImpl) CreateCheckoutSession(ctx context.Context, user *models.User, req *models.CreateCheckoutSessionRequest) (*CheckoutSessionResponse, *ServiceError) {
	if len(req.Products) == 0 {
		return nil, badRequest("Invalid products array")
	}

	var totalAmount int64 // kobo
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Products))
	metaProducts := make([]models.SessionMetadataProduct, 0, len(req.Products))

	for _, p := range req.Products {
		quantity := p.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		unitAmount := int64(math.Round(p.Price * 100))
		totalAmount += unitAmount * quantity

		item := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(checkoutCurrency),
				UnitAmount: stripe.Int64(unitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(p.Name),
				},
			},
			Quantity: stripe.Int64(quantity),
		}
		if p.Image != "" {
			item.PriceData.ProductData.Images = stripe.StringSlice([]string{p.Image})
		}
		lineItems = append(lineItems, item)

		metaProducts = append(metaProducts, models.SessionMetadataProduct{
			ID:       p.ID,
			Quantity: quantity,
			Price:    p.Price,
		})
	}
	preDiscountTotal := totalAmount

	var coupon *models.Coupon
	if req.CouponCode != "" {
		var svcErr *ServiceError
		coupon, svcErr = s.coupons.ValidateCoupon(ctx, user.ID, req.CouponCode)
		if svcErr != nil {
			return nil, badRequest("Invalid coupon code")
		}
		totalAmount -= totalAmount * int64(coupon.DiscountPercentage) / 100
	}

	metaJSON, err := json.Marshal(metaProducts)
	if err != nil {
		return nil, internal("Failed to encode session metadata")
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(s.clientURL + "/purchase-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(s.clientURL + "/purchase-cancel"),
	}
	params.AddMetadata("userId", user.ID.Hex())
	params.AddMetadata("products", string(metaJSON))
	if coupon != nil {
		params.AddMetadata("couponCode", coupon.Code)
		if totalAmount >= gatewayDiscountMin {
			gatewayCouponID, err := s.gateway.CreateOnceCoupon(coupon.DiscountPercentage)
			if err != nil {
				s.logger.Error("Failed to create gateway coupon", zap.Error(err))
				return nil, internal("Failed to create checkout session")
			}
			params.Discounts = []*stripe.CheckoutSessionDiscountParams{
				{Coupon: stripe.String(gatewayCouponID)},
			}
		}
	} else {
		params.AddMetadata("couponCode", "")
	}

	session, err := s.gateway.CreateCheckoutSession(params)
	if err != nil {
		s.logger.Error("Failed to create checkout session", zap.Error(err))
		return nil, internal("Failed to create checkout session")
	}

	if preDiscountTotal >= autoCouponThreshold {
		if _, svcErr := s.coupons.IssueForUser(ctx, user.ID); svcErr != nil {
			// The session already exists; losing the gift coupon is not
			// worth failing the purchase over.
			s.logger.Warn("Failed to issue gift coupon",
				zap.String("user_id", user.ID.Hex()),
				zap.String("error", svcErr.Message),
			)
		}
	}

	s.logger.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", user.ID.Hex()),
		zap.Int64("total_kobo", totalAmount),
	)
	return &CheckoutSessionResponse{
		SessionID:   session.ID,
		TotalAmount: float64(totalAmount) / 100,
	}, nil
}

// CheckoutSuccess finalizes a paid session into an order. It is idempotent
// per session id: repeated calls return the order created by the first.
func (s *checkoutServiceImpl) CheckoutSuccess(ctx context.Context, sessionID string) (*CheckoutResult, *ServiceError) {
	if existing, err := s.orders.FindBySessionID(ctx, sessionID); err == nil {
		return &CheckoutResult{OrderID: existing.ID.Hex()}, nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		s.logger.Error("Failed to look up order by session", zap.Error(err))
		return nil, internal("Failed to finalize order")
	}

	session, err := s.gateway.RetrieveCheckoutSession(sessionID)
	if err != nil {
		s.logger.Error("Failed to retrieve checkout session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, internal("Failed to retrieve checkout session")
	}
	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, badRequest("Payment not completed")
	}

	userID, err := primitive.ObjectIDFromHex(session.Metadata["userId"])
	if err != nil {
		return nil, badRequest("Session metadata is missing the buyer")
	}

	if code := session.Metadata["couponCode"]; code != "" {
		if svcErr := s.coupons.Deactivate(ctx, code, userID); svcErr != nil {
			return nil, svcErr
		}
	}

	var metaProducts []models.SessionMetadataProduct
	if err := json.Unmarshal([]byte(session.Metadata["products"]), &metaProducts); err != nil {
		return nil, badRequest("Session metadata is malformed")
	}

	products := make([]models.OrderLineItem, 0, len(metaProducts))
	for _, p := range metaProducts {
		pid, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return nil, badRequest("Session metadata references an invalid product")
		}
		products = append(products, models.OrderLineItem{
			Product:  pid,
			Quantity: p.Quantity,
			Price:    p.Price,
		})
	}

	lineItems, err := s.gateway.ListLineItems(sessionID)
	if err != nil {
		s.logger.Error("Failed to list session line items", zap.String("session_id", sessionID), zap.Error(err))
		return nil, internal("Failed to finalize order")
	}
	purchased := make([]models.PurchasedItem, 0, len(lineItems))
	for _, li := range lineItems {
		purchased = append(purchased, models.PurchasedItem{
			Name:     li.Description,
			Quantity: li.Quantity,
			Amount:   float64(li.AmountSubtotal) / 100,
		})
	}

	order := &models.Order{
		UserID:          userID,
		Products:        products,
		TotalAmount:     float64(session.AmountTotal) / 100,
		StripeSessionID: sessionID,
		PaymentStatus:   string(session.PaymentStatus),
		ItemsPurchased:  purchased,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost the race against a concurrent confirmation of the same
			// session; the winner's order is the order.
			existing, lookupErr := s.orders.FindBySessionID(ctx, sessionID)
			if lookupErr != nil {
				return nil, internal("Failed to finalize order")
			}
			return &CheckoutResult{OrderID: existing.ID.Hex()}, nil
		}
		s.logger.Error("Failed to persist order", zap.String("session_id", sessionID), zap.Error(err))
		return nil, internal("Failed to finalize order")
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("session_id", sessionID),
		zap.Float64("total", order.TotalAmount),
	)
	return &CheckoutResult{OrderID: order.ID.Hex()}, nil
}
