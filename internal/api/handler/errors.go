package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/logging"
)

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   http.StatusText(http.StatusBadRequest),
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

// respondError writes err as an ErrorResponse. Command errors keep their kind
// and status; anything else is an internal error.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logging.FromContext(c.Request.Context()).Error("unclassified handler error", "error", err)
		svcErr = service.Unknown(err.Error())
	}

	code := svcErr.Status()
	c.JSON(code, dto.ErrorResponse{
		Error:   http.StatusText(code),
		Message: svcErr.Detail,
		Code:    code,
		Kind:    string(svcErr.Kind),
		Entity:  svcErr.Entity,
		ID:      svcErr.ID,
	})
}
