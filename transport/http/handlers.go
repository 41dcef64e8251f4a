package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tokenizer/core"
	"github.com/layer-3/tokenizer/service"
	"go.uber.org/zap"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (h *AuthHandlers) respondWithPair(c *gin.Context, pair *core.TokenPair) {
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.authService.AccessTTL().Seconds()),
	})
}

// Issue mints a token pair for a subject authenticated elsewhere
func (h *AuthHandlers) Issue(c *gin.Context) {
	var req struct {
		Subject string        `json:"subject" binding:"required"`
		Claims  core.ClaimSet `json:"claims"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	pair, err := h.authService.Issue(c.Request.Context(), req.Subject, req.Claims)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSubject) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject"})
			return
		}
		h.logger.Error("failed to issue tokens", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue tokens"})
		return
	}

	h.respondWithPair(c, pair)
}

// Refresh handles token refresh
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Failed to refresh tokens"

		switch {
		case errors.Is(err, core.ErrTokenExpired):
			statusCode = http.StatusUnauthorized
			errorMsg = "Refresh token expired"
		case errors.Is(err, core.ErrMalformedToken),
			errors.Is(err, core.ErrSignatureInvalid),
			errors.Is(err, core.ErrInvalidSubject):
			statusCode = http.StatusUnauthorized
			errorMsg = "Invalid refresh token"
		default:
			h.logger.Error("failed to refresh tokens", zap.Error(err))
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	h.respondWithPair(c, pair)
}

// Me returns the subject and claims of the authenticated caller
func (h *AuthHandlers) Me(c *gin.Context) {
	// Subject is set by the auth middleware
	subject, exists := c.Get(ContextSubject)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Subject not found in context"})
		return
	}

	claims, _ := c.Get(ContextClaims)

	c.JSON(http.StatusOK, gin.H{
		"subject": subject,
		"claims":  claims,
	})
}
