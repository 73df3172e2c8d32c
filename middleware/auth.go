package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/utils"
)

const (
	ContextUID      = "uid"
	ContextUsername = "username"
	ContextToken    = "token"
)

// AuthMiddleware validates the Bearer token and puts the authenticated uid
// into the request context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		claims, err := utils.ParseToken(tokenStr, secret)
		if err != nil {
			utils.Logger.Warn("token_parse_error", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUID, claims.UID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextToken, tokenStr)
		c.Next()
	}
}

// UID returns the authenticated user id set by AuthMiddleware.
func UID(c *gin.Context) string {
	return c.GetString(ContextUID)
}
