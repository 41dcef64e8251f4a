package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tokenizer/core"
	"github.com/layer-3/tokenizer/service"
	"go.uber.org/zap"
)

const (
	// ContextSubject is the gin context key holding the verified subject
	ContextSubject = "subject"

	// ContextClaims is the gin context key holding the verified custom claims
	ContextClaims = "claims"

	// HeaderAdminAPIKey authorizes direct token issuance
	HeaderAdminAPIKey = "X-Admin-Api-Key"
)

// AuthMiddleware creates middleware that validates access tokens
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		// Check if the Authorization header is present and in correct format
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		session, err := authService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			status, msg := verificationError(err)
			logger.Debug("access token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		c.Set(ContextSubject, session.Subject)
		c.Set(ContextClaims, session.Claims)

		c.Next()
	}
}

// AdminKeyMiddleware guards routes with a static API key.
// An empty key disables the guarded routes entirely.
func AdminKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		given := c.GetHeader(HeaderAdminAPIKey)
		if subtle.ConstantTimeCompare([]byte(given), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		c.Next()
	}
}

// RequestLogger logs every request with zap
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// verificationError maps tokenizer failures onto HTTP responses.
// Expired tokens get their own message so clients know to refresh.
func verificationError(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrKeyDerivation):
		return http.StatusInternalServerError, "Token verification unavailable"
	case errors.Is(err, core.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	default:
		return http.StatusUnauthorized, "Invalid token"
	}
}
