package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kevinleven52/Ac.Connect/middleware"
	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/services"
)

// CouponController handles the caller's gift coupon.
type CouponController struct {
	couponService services.CouponService
}

// NewCouponController creates a new CouponController.
func NewCouponController(couponService services.CouponService) *CouponController {
	return &CouponController{couponService: couponService}
}

// GetCoupon handles GET /coupons.
func (cc *CouponController) GetCoupon(c *gin.Context) {
	user := middleware.CurrentUser(c)

	coupon, svcErr := cc.couponService.GetCoupon(c.Request.Context(), user.ID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, models.CouponView{
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
	})
}

// ValidateCoupon handles POST /coupons/validate.
func (cc *CouponController) ValidateCoupon(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Coupon code is required"})
		return
	}

	coupon, svcErr := cc.couponService.ValidateCoupon(c.Request.Context(), user.ID, req.Code)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, models.CouponView{
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
		Message:            "Coupon is valid",
	})
}
