package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/logging"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Token handles POST /auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Invalid credentials",
			Code:    http.StatusUnauthorized,
		})
		return
	}
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("login failed", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to issue token",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   service.TokenExpirationHours * 3600,
	})
}
