package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/core/service"
)

type SettingHandler struct {
	clients *service.ClientService
}

func NewSettingHandler(clients *service.ClientService) *SettingHandler {
	return &SettingHandler{clients: clients}
}

// ListSettings handles GET /settings
func (h *SettingHandler) ListSettings(c *gin.Context) {
	settings, err := h.clients.ListSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := dto.SettingListResponse{Items: make([]dto.SettingResponse, len(settings))}
	for i, s := range settings {
		response.Items[i] = dto.SettingResponse{
			ID:        s.ID,
			Key:       s.Key,
			Value:     s.Value,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		}
	}
	c.JSON(http.StatusOK, response)
}
