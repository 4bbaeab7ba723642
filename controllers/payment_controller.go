package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kevinleven52/Ac.Connect/middleware"
	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/services"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// PaymentController handles checkout session creation and payment
// confirmation, both via the client callback and the Stripe webhook.
type PaymentController struct {
	checkoutService services.CheckoutService
	stripe          *services.StripeService
	logger          *zap.Logger
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(checkoutService services.CheckoutService, stripe *services.StripeService, logger *zap.Logger) *PaymentController {
	return &PaymentController{checkoutService: checkoutService, stripe: stripe, logger: logger}
}

// CreateCheckoutSession handles POST /payments/checkout-session.
func (pc *PaymentController) CreateCheckoutSession(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid products array"})
		return
	}

	resp, svcErr := pc.checkoutService.CreateCheckoutSession(c.Request.Context(), user, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckoutSuccess handles POST /payments/checkout-success.
func (pc *PaymentController) CheckoutSuccess(c *gin.Context) {
	var req models.CheckoutSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	result, svcErr := pc.checkoutService.CheckoutSuccess(c.Request.Context(), req.SessionID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orderId": result.OrderID,
		"message": "Payment successful, order created, coupon deactivated.",
	})
}

// StripeWebhook handles POST /payments/webhook. Signature-verified; a
// completed checkout session funnels through the same idempotent
// finalization path as the client callback, so receiving both is harmless.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	event, err := pc.stripe.ParseWebhook(c.Request)
	if err != nil {
		pc.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			pc.logger.Error("Failed to unmarshal checkout session", zap.Error(err))
			break
		}
		if _, svcErr := pc.checkoutService.CheckoutSuccess(c.Request.Context(), sess.ID); svcErr != nil {
			pc.logger.Error("Webhook order finalization failed",
				zap.String("session_id", sess.ID),
				zap.String("error", svcErr.Message),
			)
		}
	default:
		pc.logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
