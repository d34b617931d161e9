package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/logging"
)

const (
	AuthHeaderKey  = "Authorization"
	AuthContextKey = "auth"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error:   "Unauthorized",
		Message: message,
		Code:    http.StatusUnauthorized,
	})
}

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			unauthorized(c, "Missing authorization header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" {
			unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'")
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			logging.FromContext(c.Request.Context()).Debug("token rejected", "error", err)
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(AuthContextKey, claims)
		ctx := logging.WithContext(c.Request.Context(),
			logging.FromContext(c.Request.Context()).With("user", claims.Subject))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetAuthClaims retrieves auth claims from context
func GetAuthClaims(c *gin.Context) (*service.TokenClaims, bool) {
	claims, exists := c.Get(AuthContextKey)
	if !exists {
		return nil, false
	}

	tokenClaims, ok := claims.(*service.TokenClaims)
	return tokenClaims, ok
}
