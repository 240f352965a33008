package jwtmw

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key under which the authenticated
// user's ID is stored by AuthRequired.
const ContextUserID = "userID"

// AuthRequired returns a Gin middleware function that validates bearer tokens
// and restricts access to authenticated users only.
// The resolved user ID is attached to the request context; protected handlers
// never observe an invalid token.
func AuthRequired(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided. Please log in."})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		// 2. Verify token signature and expiry
		userID, err := verifier.VerifyToken(tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has expired. Please log in again."})
			case errors.Is(err, ErrTokenInvalid):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token. Please log in again."})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Authentication error"})
			}
			return
		}

		// 3. Attach resolved identity and pass control to the next handler
		c.Set(ContextUserID, userID)
		c.Next()
	}
}
