package middleware

import (
	"errors"
	"net/http"
	"strings"

	"blog_backend/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TokenVerifier is the part of auth.TokenService the middleware needs.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware verifies the bearer token and stores the user id in the gin
// context. Every rejection is a 403 and aborts the chain before the handler runs.
func AuthMiddleware(tokens TokenVerifier, onReject func(reason string)) gin.HandlerFunc {
	if onReject == nil {
		onReject = func(string) {}
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			onReject("missing_header")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized!"})
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			onReject("malformed_header")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You are not logged in"})
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, auth.ErrExpiredToken) {
				reason = "expired_token"
			}
			logrus.WithField("reason", reason).Debug("Rejected bearer token")
			onReject(reason)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You are not logged in"})
			return
		}

		c.Set(auth.UserIDKey, claims.ID)
		c.Next()
	}
}
