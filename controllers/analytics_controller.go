package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kevinleven52/Ac.Connect/services"
)

// AnalyticsController serves the admin sales dashboard.
type AnalyticsController struct {
	analyticsService services.AnalyticsService
}

// NewAnalyticsController creates a new AnalyticsController.
func NewAnalyticsController(analyticsService services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// GetAnalytics handles GET /analytics (admin only): the overview plus the
// trailing seven days of sales.
func (ac *AnalyticsController) GetAnalytics(c *gin.Context) {
	ctx := c.Request.Context()

	overview, svcErr := ac.analyticsService.Overview(ctx)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -6)
	daily, svcErr := ac.analyticsService.DailySales(ctx, start, end)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analyticsData":  overview,
		"dailySalesData": daily,
	})
}
