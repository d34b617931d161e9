package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/logging"
)

// ErrorHandlerMiddleware turns panics and errors attached with c.Error into
// an ErrorResponse of kind unknown, unless the error already carries a kind.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.FromContext(c.Request.Context()).Error("panic in handler", "panic", rec)
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error:   "Internal Server Error",
					Message: "An unexpected error occurred",
					Code:    http.StatusInternalServerError,
					Kind:    string(service.KindUnknown),
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var svcErr *service.Error
		if !errors.As(err, &svcErr) {
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
}
