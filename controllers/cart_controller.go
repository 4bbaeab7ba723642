package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kevinleven52/Ac.Connect/middleware"
	"github.com/kevinleven52/Ac.Connect/services"
)

// CartController handles the authenticated user's cart.
type CartController struct {
	cartService services.CartService
}

// NewCartController creates a new CartController.
func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// AddToCartRequest is the payload for POST /cart. Quantity is normalized
// server-side; anything non-positive becomes 1.
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required,objectid"`
	Quantity  int    `json:"quantity"`
}

// RemoveFromCartRequest is the payload for DELETE /cart. An empty productId
// clears the whole cart.
type RemoveFromCartRequest struct {
	ProductID string `json:"productId"`
}

// UpdateQuantityRequest is the payload for PUT /cart/:id.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCartProducts handles GET /cart.
func (cc *CartController) GetCartProducts(c *gin.Context) {
	user := middleware.CurrentUser(c)

	products, svcErr := cc.cartService.GetCartProducts(c.Request.Context(), user.ID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, products)
}

// AddToCart handles POST /cart.
func (cc *CartController) AddToCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid productId"})
		return
	}

	items, svcErr := cc.cartService.AddToCart(c.Request.Context(), user.ID, req.ProductID, req.Quantity)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, items)
}

// RemoveFromCart handles DELETE /cart.
func (cc *CartController) RemoveFromCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req RemoveFromCartRequest
	_ = c.ShouldBindJSON(&req) // body is optional; empty means clear all

	items, svcErr := cc.cartService.RemoveFromCart(c.Request.Context(), user.ID, req.ProductID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, items)
}

// UpdateQuantity handles PUT /cart/:id.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	user := middleware.CurrentUser(c)
	productID := c.Param("id")

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	items, svcErr := cc.cartService.UpdateQuantity(c.Request.Context(), user.ID, productID, *req.Quantity)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, items)
}
