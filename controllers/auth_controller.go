package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kevinleven52/Ac.Connect/middleware"
	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/services"
)

// AuthController handles signup, login, logout, refresh and profile.
// Sessions travel as two http-only, SameSite=Strict cookies; Secure is set
// in production.
type AuthController struct {
	authService   services.AuthService
	secureCookies bool
}

// NewAuthController creates a new AuthController.
func NewAuthController(authService services.AuthService, secureCookies bool) *AuthController {
	return &AuthController{authService: authService, secureCookies: secureCookies}
}

// Signup handles POST /auth/signup.
func (ac *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, pair, svcErr := ac.authService.Signup(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ac.setAuthCookies(c, pair)
	c.JSON(http.StatusCreated, gin.H{
		"user":    user.View(),
		"message": "User created successfully",
	})
}

// Login handles POST /auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, pair, svcErr := ac.authService.Login(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ac.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"user":    user.View(),
		"message": "Login successful",
	})
}

// Logout handles POST /auth/logout. Clears both cookies and drops the
// stored refresh token.
func (ac *AuthController) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie("refresh_token")

	if svcErr := ac.authService.Logout(c.Request.Context(), refreshToken); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ac.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// RefreshToken handles POST /auth/refresh-token. On success a new access
// token is minted; the refresh token is left as is.
func (ac *AuthController) RefreshToken(c *gin.Context) {
	refreshToken, _ := c.Cookie("refresh_token")

	accessToken, svcErr := ac.authService.Refresh(c.Request.Context(), refreshToken)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("access_token", accessToken, int(services.AccessTokenTTL.Seconds()), "/", "", ac.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"message":     "Access token refreshed successfully",
	})
}

// Profile handles GET /auth/profile.
func (ac *AuthController) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.View()})
}

func (ac *AuthController) setAuthCookies(c *gin.Context, pair *services.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("access_token", pair.AccessToken, int(services.AccessTokenTTL.Seconds()), "/", "", ac.secureCookies, true)
	c.SetCookie("refresh_token", pair.RefreshToken, int(services.RefreshTokenTTL.Seconds()), "/", "", ac.secureCookies, true)
}

func (ac *AuthController) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("access_token", "", -1, "/", "", ac.secureCookies, true)
	c.SetCookie("refresh_token", "", -1, "/", "", ac.secureCookies, true)
}
