package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserIDKey is the gin context key under which RequireAuth stores the
// authenticated user's ID.
const ContextUserIDKey = "userID"

// RequireAuth validates the Authorization bearer token and stores the
// authenticated user ID in the request context. Requests without a valid
// access token are rejected with 401.
func RequireAuth(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHORIZED", "message": "Missing bearer token"},
			})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "), TokenTypeAccess)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHORIZED", "message": "Invalid or expired token"},
			})
			return
		}

		c.Set(ContextUserIDKey, claims.Subject)
		c.Next()
	}
}
