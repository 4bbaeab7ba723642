package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/services"
)

// ProductController handles catalog reads and the admin catalog mutations.
type ProductController struct {
	productService services.ProductService
}

// NewProductController creates a new ProductController.
func NewProductController(productService services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// GetAllProducts handles GET /products (admin only).
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	products, svcErr := pc.productService.GetAllProducts(c.Request.Context())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetFeaturedProducts handles GET /products/featured.
func (pc *ProductController) GetFeaturedProducts(c *gin.Context) {
	products, svcErr := pc.productService.GetFeaturedProducts(c.Request.Context())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetRecommendedProducts handles GET /products/recommended.
func (pc *ProductController) GetRecommendedProducts(c *gin.Context) {
	products, svcErr := pc.productService.GetRecommendedProducts(c.Request.Context())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProductsByCategory handles GET /products/category/:category.
func (pc *ProductController) GetProductsByCategory(c *gin.Context) {
	category := c.Param("category")

	products, svcErr := pc.productService.GetProductsByCategory(c.Request.Context(), category)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// CreateProduct handles POST /products (admin only).
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.productService.CreateProduct(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// DeleteProduct handles DELETE /products/:id (admin only).
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	if svcErr := pc.productService.DeleteProduct(c.Request.Context(), c.Param("id")); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// ToggleFeaturedProduct handles PATCH /products/:id (admin only).
func (pc *ProductController) ToggleFeaturedProduct(c *gin.Context) {
	product, svcErr := pc.productService.ToggleFeaturedProduct(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, product)
}
