package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kevinleven52/Ac.Connect/controllers"
	"github.com/kevinleven52/Ac.Connect/middleware"
	"github.com/kevinleven52/Ac.Connect/repository"
	"github.com/kevinleven52/Ac.Connect/services"
	"golang.org/x/time/rate"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Auth      *controllers.AuthController
	Cart      *controllers.CartController
	Coupon    *controllers.CouponController
	Product   *controllers.ProductController
	Payment   *controllers.PaymentController
	Analytics *controllers.AnalyticsController
}

// Register mounts all API routes under /api.
func Register(r *gin.Engine, c Controllers, tokens *services.TokenService, users repository.UserRepository) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	protect := middleware.AuthRequired(tokens, users)
	adminOnly := middleware.AdminRequired()
	// 10 req/s with a burst of 20 per IP keeps credential stuffing slow
	// without bothering real users.
	authLimit := middleware.RateLimit(rate.Limit(10), 20)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authLimit, c.Auth.Signup)
		auth.POST("/login", authLimit, c.Auth.Login)
		auth.POST("/logout", c.Auth.Logout)
		auth.POST("/refresh-token", c.Auth.RefreshToken)
		auth.GET("/profile", protect, c.Auth.Profile)
	}

	cart := api.Group("/cart", protect)
	{
		cart.GET("", c.Cart.GetCartProducts)
		cart.POST("", c.Cart.AddToCart)
		cart.DELETE("", c.Cart.RemoveFromCart)
		cart.PUT("/:id", c.Cart.UpdateQuantity)
	}

	coupons := api.Group("/coupons", protect)
	{
		coupons.GET("", c.Coupon.GetCoupon)
		coupons.POST("/validate", c.Coupon.ValidateCoupon)
	}

	products := api.Group("/products")
	{
		products.GET("", protect, adminOnly, c.Product.GetAllProducts)
		products.GET("/featured", c.Product.GetFeaturedProducts)
		products.GET("/recommended", c.Product.GetRecommendedProducts)
		products.GET("/category/:category", c.Product.GetProductsByCategory)
		products.POST("", protect, adminOnly, c.Product.CreateProduct)
		products.DELETE("/:id", protect, adminOnly, c.Product.DeleteProduct)
		products.PATCH("/:id", protect, adminOnly, c.Product.ToggleFeaturedProduct)
	}

	payments := api.Group("/payments")
	{
		payments.POST("/checkout-session", protect, c.Payment.CreateCheckoutSession)
		payments.POST("/checkout-success", protect, c.Payment.CheckoutSuccess)
		// Stripe calls this directly; authentication is the signature check.
		payments.POST("/webhook", c.Payment.StripeWebhook)
	}

	api.GET("/analytics", protect, adminOnly, c.Analytics.GetAnalytics)
}
