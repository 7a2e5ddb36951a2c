package middleware

import (
	"errors"
	"net/http"
	"strings"

	"animehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// It rejects the request unless a valid bearer token is present.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// ExpiredTokenChallenge is sent when OptionalAuth downgrades an expired token to anonymous
const ExpiredTokenChallenge = `Bearer error="invalid_token", error_description="token has expired"`

// OptionalAuth attaches the user when a valid token is sent and lets anonymous requests through.
// An expired token counts as anonymous; a malformed or forged one is still rejected.
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if errors.Is(err, service.ErrExpiredToken) {
			c.Header("WWW-Authenticate", ExpiredTokenChallenge)
			c.Next()
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// setIdentity makes the user visible both to gin handlers and to services reading the request context
func setIdentity(c *gin.Context, claims *service.Claims) {
	c.Set("claims", claims)
	c.Set("userID", claims.UserID)
	c.Set("username", claims.Username)
	c.Request = c.Request.WithContext(service.WithUserID(c.Request.Context(), claims.UserID))
}
