package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/repository"
	"github.com/kevinleven52/Ac.Connect/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ContextUserKey is where AuthRequired stores the authenticated user.
const ContextUserKey = "user"

// CodeAccessTokenExpired is the machine-readable marker for an expired (but
// otherwise valid) access token. Clients treat it as the cue to attempt one
// refresh before giving up.
const CodeAccessTokenExpired = "ACCESS_TOKEN_EXPIRED"

// AuthRequired extracts the access token cookie, verifies it, loads the
// referenced user and attaches it to the request context.
func AuthRequired(tokens *services.TokenService, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, err := c.Cookie("access_token")
		if err != nil || accessToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No access token provided"})
			c.Abort()
			return
		}

		userID, err := tokens.ValidateToken(accessToken, "access")
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Access token expired",
					"code":  CodeAccessTokenExpired,
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
			}
			c.Abort()
			return
		}

		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
			c.Abort()
			return
		}

		user, err := users.FindByID(c.Request.Context(), oid)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			}
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// AdminRequired allows only admin users past. Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied - Admin only"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by AuthRequired, or
// nil when the request is unauthenticated.
func CurrentUser(c *gin.Context) *models.User {
	val, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}
