package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/core/service"
)

func TestErrorHandlerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlerMiddleware())
	router.GET("/panic", func(*gin.Context) { panic("boom") })
	router.GET("/plain", func(c *gin.Context) { _ = c.Error(errors.New("plain failure")) })
	router.GET("/missing", func(c *gin.Context) { _ = c.Error(service.NotFound("client", "7")) })

	tests := []struct {
		path string
		code int
		kind service.Kind
	}{
		{"/panic", http.StatusInternalServerError, service.KindUnknown},
		{"/plain", http.StatusInternalServerError, service.KindUnknown},
		{"/missing", http.StatusNotFound, service.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.kind), resp.Kind)
		})
	}
}
